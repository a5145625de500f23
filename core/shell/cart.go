package shell

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/tryanzu/cart/modules/cart"
	"github.com/tryanzu/cart/modules/exceptions"
	"gopkg.in/go-playground/validator.v8"
)

// WriteTimeout bounds how long a command waits for its write to land.
var WriteTimeout = 10 * time.Second

type Module struct {
	Carts  *cart.Provider               `inject:""`
	Errors *exceptions.ExceptionsModule `inject:""`
}

// AddForm is the input of the add command: id [title] [image_url] [price].
type AddForm struct {
	ID       string  `validate:"required"`
	Title    string  `validate:"max=256"`
	ImageURL string  `validate:"omitempty,url"`
	Price    float64 `validate:"min=0"`
}

var validate = validator.New(&validator.Config{TagName: "validate"})

func ParseAddForm(args []string) (AddForm, error) {
	var form AddForm
	if len(args) > 4 {
		return form, fmt.Errorf("expected at most 4 arguments, got %d", len(args))
	}

	fields := []*string{&form.ID, &form.Title, &form.ImageURL}
	for i := 0; i < len(args) && i < len(fields); i++ {
		*fields[i] = args[i]
	}
	if len(args) == 4 {
		price, err := strconv.ParseFloat(args[3], 64)
		if err != nil || math.IsInf(price, 0) || math.IsNaN(price) {
			return form, fmt.Errorf("invalid price %q", args[3])
		}
		form.Price = price
	}

	if err := validate.Struct(form); err != nil {
		return form, err
	}
	return form, nil
}

func (form AddForm) Candidate() cart.Candidate {
	return cart.Candidate{
		ID:       form.ID,
		Title:    form.Title,
		ImageURL: form.ImageURL,
		Price:    form.Price,
	}
}

// Show renders the cart contents as a table.
func (module *Module) Show(w io.Writer, args []string) error {
	c, err := module.Carts.Use()
	if err != nil {
		return err
	}

	items := c.Items()
	if len(items) == 0 {
		fmt.Fprintln(w, "The cart is empty.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Title", "Image", "Price", "Quantity"})
	for _, item := range items {
		table.Append([]string{
			item.ID,
			item.Title,
			item.ImageURL,
			strconv.FormatFloat(item.Price, 'f', 2, 64),
			strconv.Itoa(item.Quantity),
		})
	}
	table.SetFooter([]string{"", "", "", "Units", strconv.Itoa(items.Count())})
	table.Render()
	return nil
}

func (module *Module) Add(w io.Writer, args []string) error {
	form, err := ParseAddForm(args)
	if err != nil {
		return err
	}

	c, err := module.Carts.Use()
	if err != nil {
		return err
	}
	return module.report(w, form.ID, c.Add(form.Candidate()))
}

func (module *Module) Increment(w io.Writer, args []string) error {
	return module.change(w, args, (*cart.Cart).Increment)
}

func (module *Module) Decrement(w io.Writer, args []string) error {
	return module.change(w, args, (*cart.Cart).Decrement)
}

func (module *Module) change(w io.Writer, args []string, op func(*cart.Cart, string) *cart.Write) error {
	if len(args) != 1 || args[0] == "" {
		return fmt.Errorf("expected exactly one item id")
	}

	c, err := module.Carts.Use()
	if err != nil {
		return err
	}
	return module.report(w, args[0], op(c, args[0]))
}

// report waits for the write so one-shot commands never exit before the
// snapshot reached the store.
func (module *Module) report(w io.Writer, id string, write *cart.Write) error {
	ctx, cancel := context.WithTimeout(context.Background(), WriteTimeout)
	defer cancel()

	if err := write.Wait(ctx); err != nil {
		return fmt.Errorf("cart changed in memory but was not persisted: %v", err)
	}

	if item, found := write.Snapshot().Find(id); found {
		fmt.Fprintf(w, "%s × %d\n", item.ID, item.Quantity)
	} else {
		fmt.Fprintf(w, "%s is not in the cart\n", id)
	}
	return nil
}
