package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputName(t *testing.T) {
	tests := []struct {
		name string
		base string
		file string
		want string
	}{
		{"relative source", "/home/sim/flow", "src/a.c", "src_a.c"},
		{"nested under base", "/p", "/p/a/b.c", "a_b.c"},
		{"sibling directory", "/home/sim/flow", "/home/sim/slh/slh_dsa.c", "slh_slh_dsa.c"},
		{"directly in base", "/home/sim/flow", "/home/sim/flow/main.c", "main.c"},
		{"no shared segments", "/work", "/opt/src/x.c", "opt_src_x.c"},
		{"root base", "/", "/a.c", "a.c"},
		{"partial segment is not shared", "/home/sim", "/home/simulator/x.c", "simulator_x.c"},
		{"file name equal to base segment", "/p/a.c", "/p/a.c", "a.c"},
		{"bare file name", "/p", "a.c", "a.c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OutputName(tt.base, tt.file))
		})
	}
}

func TestOutputName_Collision(t *testing.T) {
	assert.Equal(t, OutputName("/p", "/p/a/b.c"), OutputName("/p", "/p/a_b.c"))
}
