package requester

import (
	"go.uber.org/fx"
)

// Module provides the requester module dependencies
var Module = fx.Options(
	fx.Provide(
		NewHTTPRequester,
		fx.Annotate(
			NewSessionAuthManager,
			fx.As(new(AuthManager)),
		),
		fx.Annotate(
			NewHTTPRefresher,
			fx.As(new(Refresher)),
		),
	),
)
