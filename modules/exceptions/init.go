package exceptions

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/getsentry/raven-go"
	"github.com/op/go-logging"
	"github.com/tryanzu/cart/modules/cart"
)

type ExceptionsModule struct {
	ErrorService *raven.Client   `inject:""`
	Metrics      *Metrics        `inject:""`
	Logger       *logging.Logger `inject:""`
}

// Boot builds the module. An empty dsn keeps Sentry reporting disabled.
func Boot(dsn string, logger *logging.Logger) (*ExceptionsModule, error) {
	client, err := raven.New(dsn)
	if err != nil {
		return nil, err
	}

	return &ExceptionsModule{
		ErrorService: client,
		Metrics:      NewMetrics(),
		Logger:       logger,
	}, nil
}

func (di *ExceptionsModule) Recover() {

	var packet *raven.Packet

	switch rval := recover().(type) {
	case nil:
		return
	case error:
		packet = raven.NewPacket(rval.Error(), raven.NewException(rval, raven.NewStacktrace(2, 3, nil)))
	default:
		rvalStr := fmt.Sprint(rval)
		packet = raven.NewPacket(rvalStr, raven.NewException(errors.New(rvalStr), raven.NewStacktrace(2, 3, nil)))
	}

	if di.Logger != nil {
		di.Logger.Critical(packet.Message)
	}

	// Grab the error and send it to sentry
	di.ErrorService.Capture(packet, map[string]string{})
}

// PersistFailed reports a cart write the bucket rejected.
func (di *ExceptionsModule) PersistFailed(err error, s cart.Snapshot) {
	tags := map[string]string{
		"component": "cart",
		"items":     strconv.Itoa(len(s)),
		"units":     strconv.Itoa(s.Count()),
	}

	var unavailable *cart.StorageUnavailable
	if errors.As(err, &unavailable) {
		tags["op"] = unavailable.Op
		tags["key"] = unavailable.Key
	}

	di.ErrorService.CaptureError(err, tags)
}

// Persisted records every finished cart write.
func (di *ExceptionsModule) Persisted(id string, took time.Duration, err error) {
	di.Metrics.Observe(took, err)
}

// Published keeps the cart gauges in line with the latest snapshot.
func (di *ExceptionsModule) Published(s cart.Snapshot) {
	di.Metrics.Items.Set(float64(len(s)))
	di.Metrics.Units.Set(float64(s.Count()))
}
