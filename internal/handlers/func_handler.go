package handlers

import (
	"context"

	"github.com/signature-opensource/cksetup/pkg/cksetup"
)

// RunFunc executes one script for an item.
type RunFunc func(ctx context.Context, item *cksetup.SetupItem, script *cksetup.Script) error

// FuncHandler is a handler backed by a function. Executors carry the item they
// were created for.
type FuncHandler struct {
	scriptType string
	requires   []cksetup.Requirement
	run        RunFunc
}

// NewFuncHandler creates a handler for scriptType.
//
// Panics if run is nil.
func NewFuncHandler(scriptType string, run RunFunc, requires ...cksetup.Requirement) *FuncHandler {
	if run == nil {
		panic("run cannot be nil")
	}
	return &FuncHandler{scriptType: scriptType, requires: requires, run: run}
}

func (h *FuncHandler) ScriptType() string { return h.scriptType }

func (h *FuncHandler) Requires() []cksetup.Requirement {
	return append([]cksetup.Requirement(nil), h.requires...)
}

func (h *FuncHandler) CreateExecutor(_ context.Context, item *cksetup.SetupItem) (cksetup.ScriptExecutor, error) {
	return &funcExecutor{item: item, run: h.run}, nil
}

func (h *FuncHandler) ReleaseExecutor(cksetup.ScriptExecutor) {}

type funcExecutor struct {
	item *cksetup.SetupItem
	run  RunFunc
}

func (e *funcExecutor) Execute(ctx context.Context, script *cksetup.Script) error {
	return e.run(ctx, e.item, script)
}

var _ cksetup.ScriptHandler = (*FuncHandler)(nil)
