package system

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/tracklit/internal/cli"
	"github.com/julianstephens/tracklit/internal/lifecycle"
)

type DebugCmd struct {
	DBPath  DebugDBPathCmd  `cmd:"" name:"db-path" help:"Show the storage location."`
	Metrics DebugMetricsCmd `cmd:"" help:"Reconcile every user and print engine metrics."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	out, err := json.MarshalIndent(map[string]string{
		"path": ctx.Store.GetConfigPath(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(out))
	return nil
}

type DebugMetricsCmd struct{}

func (cmd *DebugMetricsCmd) Run(ctx *cli.Context) error {
	if ctx.Registry == nil {
		return errors.New("metrics registry not configured")
	}
	if err := ctx.Run(func(e *lifecycle.Engine) error {
		e.ListReminders("")
		return nil
	}); err != nil {
		return err
	}

	families, err := ctx.Registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		ctx.Printf("# %s (%s)\n", mf.GetName(), strings.ToLower(mf.GetType().String()))
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			sort.Strings(labels)
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			ctx.Printf("%s %g\n", name, m.GetCounter().GetValue())
		}
	}
	return nil
}
