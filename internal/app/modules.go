package app

import (
	"github.com/specialistvlad/hclgraph/internal/registry"
	"github.com/specialistvlad/hclgraph/modules/env"
	"github.com/specialistvlad/hclgraph/modules/format"
	"github.com/specialistvlad/hclgraph/modules/lookup"
)

// coreModules is the definitive list of all evaluator modules that are
// compiled into the hclgraph binary.
var coreModules = []registry.Module{
	&format.Module{},
	&lookup.Module{},
	&env.Module{},
}
