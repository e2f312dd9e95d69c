package transaction

import "go.uber.org/fx"

// Module exposes the transaction query service via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
