package functions

import (
	"context"
	"errors"
	"strconv"
	"time"

	mhplErrors "machinehub/statusboard/pkg/mhpl/errors"
	"machinehub/statusboard/pkg/registry"
)

type deviceFuncs struct {
	devices registry.Reader
	now     func() time.Time
	window  time.Duration
	intN    func(n int) int
}

// tally reads the registry once and returns the total and alive counts.
func (d *deviceFuncs) tally(ctx context.Context) (total, alive int, err error) {
	devices, err := d.devices.Devices(ctx)
	if err != nil {
		return 0, 0, err
	}
	now := d.now()
	for _, dev := range devices {
		if dev.AliveAt(now, d.window) {
			alive++
		}
	}
	return len(devices), alive, nil
}

func (d *deviceFuncs) alives(ctx context.Context, _ []string) (string, error) {
	_, alive, err := d.tally(ctx)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(alive), nil
}

func (d *deviceFuncs) count(ctx context.Context, _ []string) (string, error) {
	total, _, err := d.tally(ctx)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(total), nil
}

func (d *deviceFuncs) deads(ctx context.Context, _ []string) (string, error) {
	total, alive, err := d.tally(ctx)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(total - alive), nil
}

func (d *deviceFuncs) random(ctx context.Context, _ []string) (string, error) {
	devices, err := d.devices.Devices(ctx)
	if err != nil {
		return "", err
	}
	if len(devices) == 0 {
		return "", nil
	}
	return devices[d.intN(len(devices))].Name, nil
}

// report looks up the device named by the only argument. An unknown name is
// a parameter that matches nothing, so it surfaces as a parameter mismatch.
func (d *deviceFuncs) report(ctx context.Context, args []string) (string, error) {
	report, err := d.devices.Report(ctx, args[0])
	if errors.Is(err, registry.ErrDeviceNotFound) {
		return "", &mhplErrors.FunctionParamUnmatchError{
			Name:   NameReport,
			Params: args,
			Want:   1,
			Cause:  err,
		}
	}
	if err != nil {
		return "", err
	}
	return report, nil
}
