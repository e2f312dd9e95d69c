package app

import (
	"time"

	"github.com/cerebra-app/checkout/internal/app/api/server"
	"github.com/cerebra-app/checkout/internal/app/service/checkout"
	"github.com/cerebra-app/checkout/internal/app/service/identity"
	"github.com/cerebra-app/checkout/internal/app/service/receipt"
	"github.com/cerebra-app/checkout/internal/app/service/reconcile"
	"github.com/cerebra-app/checkout/internal/app/service/statistics"
	"github.com/cerebra-app/checkout/internal/app/service/transaction"
	"github.com/cerebra-app/checkout/internal/app/service/webhooklog"
	"github.com/cerebra-app/checkout/internal/platform/db"
	"github.com/cerebra-app/checkout/internal/platform/whop"
	"github.com/cerebra-app/checkout/pkg/config"
	"github.com/cerebra-app/checkout/pkg/logger"

	"go.uber.org/fx"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	server.Module,
	whop.Module,
	identity.Module,
	webhooklog.Module,
	reconcile.Module,
	checkout.Module,
	transaction.Module,
	receipt.Module,
	statistics.Module,
)
