package server

import (
	"errors"
	"net/http"
	"strings"

	"donationhub/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ctypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Service) handlePostLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		s.writeError(w, r, types.Validationf("Email and password are required."))
		return
	}

	input := &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: ctypes.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(s.config.CognitoClientID),
		AuthParameters: map[string]string{
			"USERNAME": email,
			"PASSWORD": req.Password,
		},
	}

	resp, err := s.cognitoClient.InitiateAuth(ctx, input)
	if err != nil {
		var notConfirmed *ctypes.UserNotConfirmedException
		if errors.As(err, &notConfirmed) {
			s.writeError(w, r, types.Unauthenticatedf("Please confirm your account before logging in."))
			return
		}

		s.logger.WithError(err).Info("login rejected")
		s.writeError(w, r, types.Unauthenticatedf("Invalid credentials"))
		return
	}

	if resp.AuthenticationResult == nil || resp.AuthenticationResult.AccessToken == nil {
		s.writeError(w, r, types.Unauthenticatedf("Login failed"))
		return
	}

	accessToken := aws.ToString(resp.AuthenticationResult.AccessToken)
	expiresIn := int(resp.AuthenticationResult.ExpiresIn)

	profile, err := s.cognitoClient.GetUser(ctx, &cognitoidentityprovider.GetUserInput{
		AccessToken: aws.String(accessToken),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	attrs := make(map[string]string, len(profile.UserAttributes))
	for _, attr := range profile.UserAttributes {
		attrs[aws.ToString(attr.Name)] = aws.ToString(attr.Value)
	}

	userID := attrs["sub"]
	if userID == "" {
		userID = aws.ToString(profile.Username)
	}
	if attrs["email"] != "" {
		email = attrs["email"]
	}
	name := strings.TrimSpace(attrs["given_name"] + " " + attrs["family_name"])

	if err := s.identities.UpsertIdentity(ctx, userID, email, name); err != nil {
		s.writeError(w, r, err)
		return
	}

	encryptedToken, err := s.cookie.Encode(s.config.CookieName, accessToken)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    encryptedToken,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   sessionMaxAge(s.config.SessionMaxAgeSec, expiresIn),
		Path:     "/",
	})

	s.logger.WithField("user_id", userID).Info("user logged in")

	writeJSON(w, http.StatusOK, map[string]any{
		"message":     "Logged in successfully.",
		"accessToken": accessToken,
		"expiresIn":   expiresIn,
	})
}

// sessionMaxAge caps the configured session length at the token lifetime.
func sessionMaxAge(configured, expiresIn int) int {
	if configured <= 0 || (expiresIn > 0 && expiresIn < configured) {
		return expiresIn
	}
	return configured
}

func (s *Service) handlePostLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})

	writeJSON(w, http.StatusOK, map[string]any{"message": "Logged out successfully."})
}
