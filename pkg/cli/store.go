package cli

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/flexigantt/pkg/domain/interfaces"
	"github.com/secmon-lab/flexigantt/pkg/domain/types"
	"github.com/secmon-lab/flexigantt/pkg/usecase"
	"github.com/secmon-lab/flexigantt/pkg/utils/logging"
)

type store struct {
	gw      interfaces.Gateway
	palette types.Palette
}

func (s *store) workspace() *usecase.Workspace {
	return usecase.New(s.gw, usecase.WithPalette(s.palette))
}

func (s *store) close(ctx context.Context) {
	if err := s.gw.Close(); err != nil {
		logging.From(ctx).Error("failed to close repository", "error", err.Error())
	}
}

// applyFilters parses "field:option" arguments onto a session
func applyFilters(session *usecase.Session, filters []string) error {
	for _, f := range filters {
		field, option, ok := strings.Cut(f, ":")
		if !ok || field == "" || option == "" {
			return goerr.New("filter must be <field>:<option>", goerr.V("filter", f))
		}
		if err := session.ToggleFilter(types.FieldID(field), types.OptionID(option)); err != nil {
			return goerr.Wrap(err, "invalid filter", goerr.V("filter", f))
		}
	}
	return nil
}
