package engine_test

import (
	"testing"

	"github.com/jassi-singh/kvsd/internal/engine"
	"github.com/jassi-singh/kvsd/internal/engine/enginetest"
)

func TestKVEngineContract(t *testing.T) {
	enginetest.RunContract(t, func(dir string) (engine.Engine, error) {
		return engine.Open(dir)
	})
}
