package cmd

import (
	"context"
	"fmt"

	"github.com/abhisek/gcsetutor/internal/config"
	"github.com/abhisek/gcsetutor/internal/diagnostic"
	"github.com/abhisek/gcsetutor/internal/llm"
	"github.com/abhisek/gcsetutor/internal/logger"
	"github.com/abhisek/gcsetutor/internal/store"
	"github.com/abhisek/gcsetutor/internal/turn"
	"github.com/abhisek/gcsetutor/internal/tutor"
)

// engine bundles the pieces shared by serve and chat.
type engine struct {
	selector     *diagnostic.Selector
	orchestrator *turn.Orchestrator
	offline      bool
}

func buildEngine(ctx context.Context, cfg config.Config, st *store.Store, log *logger.Logger) (*engine, error) {
	bank, err := loadBank(cfg)
	if err != nil {
		return nil, err
	}
	selector := diagnostic.NewSelector(bank, nil)

	// The tutor works without a model, in offline mode.
	offline := !cfg.LLM.HasAPIKey() || cfg.LLM.Provider == llm.ProviderMock
	var provider llm.Provider
	if offline {
		mock := llm.NewMockProvider()
		mock.Responder = tutor.OfflineResponse
		provider = llm.WithLogging(mock, llm.ProviderMock, st.EventRepo(), log)
		log.Warn("no LLM provider configured, running in offline mode")
	} else {
		p, err := llm.NewProvider(ctx, cfg.LLM, st.EventRepo(), log)
		if err != nil {
			return nil, err
		}
		provider = p
	}

	tcfg := tutor.DefaultConfig()
	tcfg.MaxTokens = cfg.LLM.MaxTokens
	tcfg.Temperature = cfg.LLM.Temperature
	tcfg.HistoryLimit = cfg.Tutor.HistoryLimit

	orch := turn.New(turn.Deps{
		Sessions:      st.SessionRepo(),
		Evidence:      st.EvidenceRepo(),
		EvaluationLog: st.EvaluationLog(),
		Tutor:         tutor.New(provider, tcfg),
		Selector:      selector,
		Logger:        log,
	})
	return &engine{selector: selector, orchestrator: orch, offline: offline}, nil
}

func loadBank(cfg config.Config) (*diagnostic.Bank, error) {
	if cfg.Diagnostic.BankPath == "" {
		return diagnostic.DefaultBank()
	}
	b, err := diagnostic.LoadBank(cfg.Diagnostic.BankPath)
	if err != nil {
		return nil, fmt.Errorf("load diagnostic bank: %w", err)
	}
	return b, nil
}
