package shell

import (
	"bytes"
	"io"

	"github.com/abiosoft/ishell"
)

// RunShell starts an interactive session over the provided cart.
func RunShell(module *Module) {
	shell := ishell.New()
	shell.Println("Cart Interactive Shell 0.1")

	shell.AddCmd(&ishell.Cmd{
		Name: "items",
		Help: "List the cart contents.",
		Func: module.command(module.Show),
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "add",
		Help: "add <id> [title] [image_url] [price] puts one unit in the cart.",
		Func: module.command(module.Add),
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "inc",
		Help: "inc <id> adds a unit of an item already in the cart.",
		Func: module.command(module.Increment),
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "dec",
		Help: "dec <id> takes a unit out, dropping the item at zero.",
		Func: module.command(module.Decrement),
	})

	// start shell
	shell.Run()
}

func (module *Module) command(fn func(io.Writer, []string) error) func(*ishell.Context) {
	return func(c *ishell.Context) {
		if module.Errors != nil {
			defer module.Errors.Recover()
		}

		var out bytes.Buffer
		if err := fn(&out, c.Args); err != nil {
			c.Println("error:", err)
			return
		}
		c.Print(out.String())
	}
}
