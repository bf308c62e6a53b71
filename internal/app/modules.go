package app

import (
	"github.com/specialistvlad/mapfuse/internal/mapfusion"
	"github.com/specialistvlad/mapfuse/internal/optimizer"
)

// coreModules is the definitive list of optimizer modules compiled into the
// mapfuse binary.
func coreModules(cfg *Config) []optimizer.Module {
	return []optimizer.Module{
		mapfusion.Module{MaxIterations: cfg.MaxIterations},
	}
}
