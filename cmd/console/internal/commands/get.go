package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/99minutos/storefront-console/internal/core/domain"
)

type GetCmd struct {
	Path string `arg:"" help:"Backend path, e.g. /orders/my"`
}

func (g *GetCmd) Run(ctx context.Context, globals *Globals) error {
	rt, err := newRuntime(ctx, globals, terminalNavigator())
	if err != nil {
		return err
	}
	defer rt.Close()

	var raw json.RawMessage
	if err := rt.client.GetJSON(ctx, g.Path, &raw); err != nil {
		if errors.Is(err, domain.ErrSessionExpired) {
			return fmt.Errorf("GET %s: %w, the stored credential was removed; %s", g.Path, err, reloginHint)
		}
		return fmt.Errorf("GET %s: %w", g.Path, err)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		buf.Reset()
		buf.Write(raw)
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(globals.out())
	return err
}
