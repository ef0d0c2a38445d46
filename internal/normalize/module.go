package normalize

import "go.uber.org/fx"

// Module provides a Normalizer built from the normalize config section
var Module = fx.Module("normalize",
	fx.Provide(NewFromConfig),
)
