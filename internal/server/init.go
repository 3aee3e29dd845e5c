package server

import (
	"github.com/nazirsaif/nexus-sub000/internal/config"
	"github.com/nazirsaif/nexus-sub000/internal/handler"
	"github.com/nazirsaif/nexus-sub000/internal/repository"
	"github.com/nazirsaif/nexus-sub000/internal/service"
	"github.com/nazirsaif/nexus-sub000/internal/signal"
	"github.com/nazirsaif/nexus-sub000/pkg/storage"

	"go.mongodb.org/mongo-driver/mongo"
)

// Repositories bundles all data access layers.
type Repositories struct {
	Users         repository.IUserRepository
	Profiles      repository.IProfileRepository
	Meetings      repository.IMeetingRepository
	Documents     repository.IDocumentRepository
	Transactions  repository.ITransactionRepository
	VideoCalls    repository.IVideoCallRepository
	RefreshTokens repository.IRefreshTokenRepository
	OTPs          repository.IOTPRepository
	EmailTokens   repository.IEmailTokenRepository
}

// Services bundles the business logic layers.
type Services struct {
	Tokens     *service.TokenService
	Auth       *service.AuthService
	Users      *service.UserService
	Profiles   *service.ProfileService
	Meetings   *service.MeetingService
	Documents  *service.DocumentService
	Payments   *service.PaymentService
	VideoCalls *service.VideoCallService
	Hub        *signal.Hub
}

// Handlers bundles the HTTP layer.
type Handlers struct {
	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	Profile   *handler.ProfileHandler
	Meeting   *handler.MeetingHandler
	Document  *handler.DocumentHandler
	Payment   *handler.PaymentHandler
	VideoCall *handler.VideoCallHandler
	Signaling *handler.SignalingHandler
}

// InitRepositories creates all repositories
func InitRepositories(cfg *config.Config, db *mongo.Database) *Repositories {
	return &Repositories{
		Users:         repository.NewUserRepository(db),
		Profiles:      repository.NewProfileRepository(db),
		Meetings:      repository.NewMeetingRepository(db),
		Documents:     repository.NewDocumentRepository(db),
		Transactions:  repository.NewTransactionRepository(db),
		VideoCalls:    repository.NewVideoCallRepository(db),
		RefreshTokens: repository.NewRefreshTokenRepository(db),
		OTPs:          repository.NewOTPRepository(db),
		EmailTokens:   repository.NewEmailTokenRepository(db),
	}
}

// InitServices creates all services
func InitServices(cfg *config.Config, repos *Repositories) (*Services, error) {
	store, err := storage.NewDiskStore(cfg.Upload.Dir, cfg.Upload.MaxSizeMB, cfg.Upload.AllowedExts)
	if err != nil {
		return nil, err
	}

	tokens := service.NewTokenService(cfg, repos.RefreshTokens)
	mailer := service.NewMailer(cfg.Mail)
	auth := service.NewAuthService(cfg, repos.Users, repos.OTPs, repos.EmailTokens, tokens, mailer)

	// A typed nil must not end up inside the interface field.
	var gateway service.PaymentGateway
	if gw := service.NewStripeGateway(cfg.Payment.StripeSecretKey); gw != nil {
		gateway = gw
	}
	payments := service.NewPaymentService(cfg, repos.Transactions, repos.Users, gateway)

	videoCalls := service.NewVideoCallService(repos.VideoCalls, repos.Users, repos.Meetings)

	return &Services{
		Tokens:     tokens,
		Auth:       auth,
		Users:      service.NewUserService(repos.Users),
		Profiles:   service.NewProfileService(repos.Profiles, repos.Users),
		Meetings:   service.NewMeetingService(repos.Meetings, repos.Users),
		Documents:  service.NewDocumentService(repos.Documents, repos.Users, store),
		Payments:   payments,
		VideoCalls: videoCalls,
		Hub:        signal.NewHub(videoCalls),
	}, nil
}

// InitHandlers creates all HTTP handlers
func InitHandlers(cfg *config.Config, s *Services) *Handlers {
	return &Handlers{
		Auth:      handler.NewAuthHandler(s.Auth),
		User:      handler.NewUserHandler(s.Users),
		Profile:   handler.NewProfileHandler(s.Profiles),
		Meeting:   handler.NewMeetingHandler(s.Meetings),
		Document:  handler.NewDocumentHandler(s.Documents),
		Payment:   handler.NewPaymentHandler(s.Payments, cfg),
		VideoCall: handler.NewVideoCallHandler(s.VideoCalls),
		Signaling: handler.NewSignalingHandler(s.Hub, s.Tokens, s.VideoCalls),
	}
}
