package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"donationhub/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

type DonationSubmitter interface {
	Submit(ctx context.Context, principal *types.Principal, req *types.DonationRequest) (*types.DonationReceipt, error)
	ListDonations(ctx context.Context, principal *types.Principal, status string) ([]*types.DonationRecord, error)
}

type DonationReviewer interface {
	ListForAdmin(ctx context.Context, principal *types.Principal) (*types.AdminDonations, error)
	Review(ctx context.Context, principal *types.Principal, donationID string, action types.ReviewAction, adminNotes *string) (*types.ReviewedDonation, error)
}

type NGODirectory interface {
	ListPublic(ctx context.Context) ([]*types.NGO, error)
	OwnNGO(ctx context.Context, principal *types.Principal) (*types.NGODetail, error)
	UpdateOwnNGO(ctx context.Context, principal *types.Principal, update types.NGOUpdate) (*types.NGO, error)
	ListAll(ctx context.Context, principal *types.Principal) ([]*types.NGODetail, error)
	UpdateNGO(ctx context.Context, principal *types.Principal, ngoID, action string, update types.NGOUpdate) (*types.NGO, error)
	DeleteNGO(ctx context.Context, principal *types.Principal, ngoID string) error
}

type UserDirectory interface {
	ListUsers(ctx context.Context, principal *types.Principal) ([]*types.UserListing, error)
}

// IdentityStore records accounts as they sign in.
type IdentityStore interface {
	UpsertIdentity(ctx context.Context, userID, email, name string) error
}

// CognitoAPI is the part of the Cognito client the auth handlers use.
type CognitoAPI interface {
	InitiateAuth(ctx context.Context, params *cognitoidentityprovider.InitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error)
	GetUser(ctx context.Context, params *cognitoidentityprovider.GetUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.GetUserOutput, error)
	SignUp(ctx context.Context, params *cognitoidentityprovider.SignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, params *cognitoidentityprovider.ConfirmSignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ConfirmSignUpOutput, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Service struct {
	logger *logrus.Logger
	config *types.Config

	cognitoClient CognitoAPI
	cookie        *securecookie.SecureCookie
	identity      Authenticator
	identities    IdentityStore
	db            Pinger

	submissions DonationSubmitter
	reviews     DonationReviewer
	directory   NGODirectory
	users       UserDirectory

	server *http.Server
}

func NewSecureCookie(config *types.Config) *securecookie.SecureCookie {
	hashKey, _ := base64.StdEncoding.DecodeString(config.CookieHashKey)
	blockKey, _ := base64.StdEncoding.DecodeString(config.CookieBlockKey)

	return securecookie.New(hashKey, blockKey)
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	cognitoClient CognitoAPI,
	cookie *securecookie.SecureCookie,
	identity Authenticator,
	identities IdentityStore,
	db Pinger,
	submissions DonationSubmitter,
	reviews DonationReviewer,
	directory NGODirectory,
	users UserDirectory,
) *Service {
	mux := flow.New()

	s := &Service{
		logger:        logger,
		config:        config,
		cognitoClient: cognitoClient,
		cookie:        cookie,
		identity:      identity,
		identities:    identities,
		db:            db,

		submissions: submissions,
		reviews:     reviews,
		directory:   directory,
		users:       users,

		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)
	s.server.Handler = s.StripTrailingSlash(mux)

	return s
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the routed handler, mainly for tests.
func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Not found"})
	})
	r.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "Method not allowed"})
	})

	r.Use(s.LoggingMiddleware)
	r.Use(s.Authenticate)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.HandleFunc("/auth/register", s.handlePostRegister, http.MethodPost)
	r.HandleFunc("/auth/register/confirm", s.handlePostRegisterConfirm, http.MethodPost)
	r.HandleFunc("/auth/login", s.handlePostLogin, http.MethodPost)
	r.HandleFunc("/auth/logout", s.handlePostLogout, http.MethodPost)

	r.HandleFunc("/ngos", s.handleGetNGOs, http.MethodGet)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/donations", s.handleGetDonations, http.MethodGet)

		r.Group(func(r *flow.Mux) {
			r.Use(s.RequireRole(types.RoleUser, "Only users can submit donations."))

			r.HandleFunc("/donations", s.handlePostDonation, http.MethodPost)
		})

		r.Group(func(r *flow.Mux) {
			r.Use(s.RequireRole(types.RoleAdmin, "Forbidden"))

			r.HandleFunc("/admin/donations", s.handleGetAdminDonations, http.MethodGet)
			r.HandleFunc("/admin/donations", s.handlePatchAdminDonation, http.MethodPatch)

			r.HandleFunc("/admin/ngo", s.handleGetOwnNGO, http.MethodGet)
			r.HandleFunc("/admin/ngo", s.handlePatchOwnNGO, http.MethodPatch)

			r.HandleFunc("/admin/ngos", s.handleGetAdminNGOs, http.MethodGet)
			r.HandleFunc("/admin/ngos", s.handlePatchAdminNGO, http.MethodPatch)
			r.HandleFunc("/admin/ngos", s.handleDeleteAdminNGO, http.MethodDelete)

			r.HandleFunc("/admin/users", s.handleGetAdminUsers, http.MethodGet)
		})
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.db.Ping(ctx); err != nil {
			s.logger.WithError(err).Error("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
