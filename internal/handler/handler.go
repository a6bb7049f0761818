package handler

import (
	"context"

	"github.com/arrajeevchandar/messhall/internal/attendance"
	"github.com/arrajeevchandar/messhall/internal/auth"
	"github.com/arrajeevchandar/messhall/internal/cloudinary"
	"github.com/arrajeevchandar/messhall/internal/config"
	"github.com/arrajeevchandar/messhall/internal/mealclock"
	"github.com/arrajeevchandar/messhall/internal/menu"
	"github.com/arrajeevchandar/messhall/internal/queue"
	"github.com/arrajeevchandar/messhall/internal/roster"
)

// MenuStore is the menu persistence surface the handlers need.
type MenuStore interface {
	Get(ctx context.Context, day string) (*menu.DayMenu, error)
	List(ctx context.Context) ([]menu.DayMenu, error)
	Put(ctx context.Context, m menu.DayMenu) error
}

// Handler carries the wired services behind the HTTP surface.
type Handler struct {
	cfg         config.App
	clock       mealclock.Clock
	policy      mealclock.Policy
	submissions *attendance.Service
	reports     *attendance.Reporter
	members     *roster.Repository
	menus       MenuStore
	otp         *auth.OTPStore
	emails      queue.Queue
	cloud       *cloudinary.Client // nil when Cloudinary is not configured
}

// New creates a handler.
func New(
	cfg config.App,
	clock mealclock.Clock,
	policy mealclock.Policy,
	submissions *attendance.Service,
	reports *attendance.Reporter,
	members *roster.Repository,
	menus MenuStore,
	otp *auth.OTPStore,
	emails queue.Queue,
	cloud *cloudinary.Client,
) *Handler {
	return &Handler{
		cfg:         cfg,
		clock:       clock,
		policy:      policy,
		submissions: submissions,
		reports:     reports,
		members:     members,
		menus:       menus,
		otp:         otp,
		emails:      emails,
		cloud:       cloud,
	}
}
