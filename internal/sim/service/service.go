package service

import (
	"context"
	"time"

	greenhouse "greenhouse_console"
	"greenhouse_console/internal/sim/repository"
)

// Broadcaster pushes one event to every connected console. The hub
// implements it.
type Broadcaster interface {
	Broadcast(event string, data any)
}

type Authorization interface {
	Register(ctx context.Context, username, email, password string) (string, *greenhouse.User, error)
	Login(ctx context.Context, username, password string) (string, *greenhouse.User, error)
	ParseToken(accessToken string) (int, error)
	GetUser(ctx context.Context, id int) (*greenhouse.User, error)
	ChangePassword(ctx context.Context, userID int, current, next string) error
	SetPassword(ctx context.Context, userID int, next string) error
}

// Engine is the autonomous control loop plus the manual override surface.
type Engine interface {
	Run(ctx context.Context, tick time.Duration)
	Control(ctx context.Context, actuator string, state bool, pwm *int, by string) error
	ResumeAutomatic(ctx context.Context, by string) error
	UpdateThresholds(ctx context.Context, fields map[string]float64, by string) (greenhouse.ThresholdSet, error)
}

// Activity is the in-memory operator audit trail and password-reset queue.
type Activity interface {
	Record(username, action, detail string)
	Last24h() []greenhouse.ActivityEntry
	FileRequest(username, message, rememberedPassword string) greenhouse.PasswordRequest
	Pending() []greenhouse.PasswordRequest
	Resolve(id int) (greenhouse.PasswordRequest, bool)
}

type Service struct {
	Authorization
	Engine
	Activity
}

func NewService(repos *repository.Repository, hub Broadcaster, signingKey string) *Service {
	return &Service{
		Authorization: NewAuthService(repos.Users, signingKey),
		Engine:        NewEngineService(repos, hub),
		Activity:      NewActivityLog(),
	}
}
