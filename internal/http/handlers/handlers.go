// Handler wiring.
//
// Handlers groups the HTTP endpoints for assignments, chat, settings,
// profile, stats, and account operations. It depends on abstract service
// interfaces so transport concerns stay separate from business logic.
package handlers

import (
	"github.com/tbourn/go-study-backend/internal/auth"
)

// Handlers groups all HTTP endpoints and their service dependencies.
type Handlers struct {
	assignSvc   AssignmentService
	chatSvc     ChatService
	settingsSvc SettingsService
	usageSvc    UsageService
	profileSvc  ProfileService

	authClient *auth.Client
	verifier   *auth.Verifier
}

// New constructs a Handlers instance bound to the given services. authClient
// may be disabled (no provider URL), in which case the account endpoints are
// not mounted by the router.
func New(
	assignSvc AssignmentService,
	chatSvc ChatService,
	settingsSvc SettingsService,
	usageSvc UsageService,
	profileSvc ProfileService,
	authClient *auth.Client,
	verifier *auth.Verifier,
) *Handlers {
	return &Handlers{
		assignSvc:   assignSvc,
		chatSvc:     chatSvc,
		settingsSvc: settingsSvc,
		usageSvc:    usageSvc,
		profileSvc:  profileSvc,
		authClient:  authClient,
		verifier:    verifier,
	}
}

// AuthEnabled reports whether the identity-provider proxy endpoints should
// be mounted.
func (h *Handlers) AuthEnabled() bool {
	return h.authClient != nil && h.authClient.Enabled()
}
