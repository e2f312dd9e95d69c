package whop

import "go.uber.org/fx"

// Module exposes the provider client via Fx.
var Module = fx.Options(
	fx.Provide(NewClient),
)
