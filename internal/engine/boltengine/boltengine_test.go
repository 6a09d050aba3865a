package boltengine_test

import (
	"testing"

	"github.com/jassi-singh/kvsd/internal/engine"
	"github.com/jassi-singh/kvsd/internal/engine/boltengine"
	"github.com/jassi-singh/kvsd/internal/engine/enginetest"
)

var _ engine.Engine = (*boltengine.Engine)(nil)

func TestBoltEngineContract(t *testing.T) {
	enginetest.RunContract(t, func(dir string) (engine.Engine, error) {
		return boltengine.Open(dir)
	})
}
