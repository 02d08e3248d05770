package customer

import (
	"context"
	"fmt"

	"github.com/korattejas/beautyden-nextjs-sub001/internal/model"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/session"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/upstream"
	apperrors "github.com/korattejas/beautyden-nextjs-sub001/pkg/errors"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/logger"
)

// CustomerAPI is the authenticated part of the backend.
type CustomerAPI interface {
	SendOTP(ctx context.Context, mobile string) error
	VerifyOTP(ctx context.Context, mobile, otp string) (*model.CustomerPayload, error)
	Profile(ctx context.Context) (*model.Customer, error)
	UpdateProfile(ctx context.Context, req model.UpdateProfileRequest) (*model.Customer, error)
	Logout(ctx context.Context) error
}

type CustomerServicer interface {
	SendOTP(ctx context.Context, sess *session.Session, mobile string) error
	VerifyOTP(ctx context.Context, sess *session.Session, mobile, otp string) (*model.Customer, error)
	Status(ctx context.Context, sess *session.Session) (model.AuthSession, error)
	Profile(ctx context.Context, sess *session.Session) (*model.Customer, error)
	UpdateProfile(ctx context.Context, sess *session.Session, req model.UpdateProfileRequest) (*model.Customer, error)
	Logout(ctx context.Context, sess *session.Session) error
}

type Service struct {
	api CustomerAPI
	log *logger.Logger
}

func NewService(api CustomerAPI, log *logger.Logger) *Service {
	return &Service{api: api, log: log}
}

func withSession(ctx context.Context, sess *session.Session) context.Context {
	return upstream.WithCredentials(ctx, sessionCredentials{sess: sess})
}

func (s *Service) SendOTP(ctx context.Context, sess *session.Session, mobile string) error {
	if err := s.api.SendOTP(withSession(ctx, sess), mobile); err != nil {
		s.log.WithContext(ctx).Error(err, "failed to send otp", "session_id", sess.ID())
		return err
	}
	return nil
}

// VerifyOTP exchanges the code for a bearer token and keeps it in the session.
func (s *Service) VerifyOTP(ctx context.Context, sess *session.Session, mobile, otp string) (*model.Customer, error) {
	payload, err := s.api.VerifyOTP(withSession(ctx, sess), mobile, otp)
	if err != nil {
		s.log.WithContext(ctx).Warn("otp verification failed", "session_id", sess.ID(), "error", err.Error())
		return nil, err
	}
	if payload.Token == "" {
		return nil, apperrors.NewUpstream("login response carried no token", nil)
	}

	if err := sess.Save(ctx, session.KeyAuthToken, payload.Token); err != nil {
		return nil, fmt.Errorf("failed to store login: %w", err)
	}
	if err := sess.Save(ctx, session.KeyMobileNumber, mobile); err != nil {
		return nil, fmt.Errorf("failed to store login: %w", err)
	}
	if err := sess.Save(ctx, session.KeyIsOTPVerified, true); err != nil {
		return nil, fmt.Errorf("failed to store login: %w", err)
	}

	s.log.WithContext(ctx).Info("customer logged in", "session_id", sess.ID(), "customer_id", payload.Customer.ID.String())
	return &payload.Customer, nil
}

func (s *Service) Status(ctx context.Context, sess *session.Session) (model.AuthSession, error) {
	verified, err := sess.Bool(ctx, session.KeyIsOTPVerified)
	if err != nil {
		return model.AuthSession{}, fmt.Errorf("failed to read login state: %w", err)
	}
	if !verified {
		return model.AuthSession{}, nil
	}
	mobile, err := sess.String(ctx, session.KeyMobileNumber)
	if err != nil {
		return model.AuthSession{}, fmt.Errorf("failed to read login state: %w", err)
	}
	return model.AuthSession{IsOTPVerified: true, MobileNumber: mobile}, nil
}

func (s *Service) requireLogin(ctx context.Context, sess *session.Session) error {
	token, err := sess.String(ctx, session.KeyAuthToken)
	if err != nil {
		return fmt.Errorf("failed to read login state: %w", err)
	}
	if token == "" {
		return apperrors.ErrSessionExpired
	}
	return nil
}

func (s *Service) Profile(ctx context.Context, sess *session.Session) (*model.Customer, error) {
	if err := s.requireLogin(ctx, sess); err != nil {
		return nil, err
	}
	return s.api.Profile(withSession(ctx, sess))
}

func (s *Service) UpdateProfile(ctx context.Context, sess *session.Session, req model.UpdateProfileRequest) (*model.Customer, error) {
	if err := s.requireLogin(ctx, sess); err != nil {
		return nil, err
	}
	c, err := s.api.UpdateProfile(withSession(ctx, sess), req)
	if err != nil {
		s.log.WithContext(ctx).Error(err, "failed to update profile", "session_id", sess.ID())
		return nil, err
	}
	return c, nil
}

// Logout ends the login locally even when the backend call fails.
func (s *Service) Logout(ctx context.Context, sess *session.Session) error {
	var apiErr error
	if err := s.requireLogin(ctx, sess); err == nil {
		apiErr = s.api.Logout(withSession(ctx, sess))
		if apiErr != nil {
			s.log.WithContext(ctx).Warn("backend logout failed", "session_id", sess.ID(), "error", apiErr.Error())
		}
	}
	if err := sess.Remove(ctx, authKeys...); err != nil {
		return fmt.Errorf("failed to clear login: %w", err)
	}
	return nil
}
