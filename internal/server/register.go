package server

import (
	"errors"
	"net/http"
	"net/mail"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ctypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

type registerRequest struct {
	GivenName       string `json:"givenName"`
	FamilyName      string `json:"familyName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type registerConfirmRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type fieldErrorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (s *Service) handlePostRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	givenName := strings.TrimSpace(req.GivenName)
	familyName := strings.TrimSpace(req.FamilyName)
	email := strings.TrimSpace(req.Email)

	fieldErrs := validateRegisterInput(givenName, familyName, email, req.Password, req.ConfirmPassword)
	if len(fieldErrs) > 0 {
		s.logger.WithField("field_errors", fieldErrs).Info("validation errors during registration")
		writeJSON(w, http.StatusBadRequest, fieldErrorBody{Error: "Please fix the highlighted fields.", Fields: fieldErrs})
		return
	}

	input := &cognitoidentityprovider.SignUpInput{
		ClientId: aws.String(s.config.CognitoClientID),
		Username: aws.String(email),
		Password: aws.String(req.Password),
		UserAttributes: []ctypes.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
			{Name: aws.String("given_name"), Value: aws.String(givenName)},
			{Name: aws.String("family_name"), Value: aws.String(familyName)},
		},
	}

	if _, err := s.cognitoClient.SignUp(ctx, input); err != nil {
		msg, fieldErrs, status := s.mapCognitoSignUpError(err)
		writeJSON(w, status, fieldErrorBody{Error: msg, Fields: fieldErrs})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Account created. Check your email for a confirmation code.",
		"email":   email,
	})
}

func (s *Service) handlePostRegisterConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerConfirmRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	email := strings.TrimSpace(req.Email)
	code := strings.TrimSpace(req.Code)
	if email == "" || code == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Email and confirmation code are required."})
		return
	}

	input := &cognitoidentityprovider.ConfirmSignUpInput{
		ClientId:         aws.String(s.config.CognitoClientID),
		Username:         aws.String(email),
		ConfirmationCode: aws.String(code),
	}

	if _, err := s.cognitoClient.ConfirmSignUp(ctx, input); err != nil {
		s.logger.WithError(err).Error("failed to confirm user signup")

		var codeMismatch *ctypes.CodeMismatchException
		if errors.As(err, &codeMismatch) {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid confirmation code. Please check the code and try again."})
			return
		}

		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Unable to confirm account. Please try again."})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Account confirmed. You can now log in."})
}

var (
	hasUpperReg  = regexp.MustCompile(`[A-Z]`)
	hasLowerReg  = regexp.MustCompile(`[a-z]`)
	hasDigitReg  = regexp.MustCompile(`[0-9]`)
	hasSymbolReg = regexp.MustCompile(`[^A-Za-z0-9]`)
)

func validateRegisterInput(givenName, familyName, email, password, confirmPassword string) map[string]string {
	errs := map[string]string{}

	if givenName == "" {
		errs["givenName"] = "First name is required."
	}

	if familyName == "" {
		errs["familyName"] = "Last name is required."
	}

	if email == "" {
		errs["email"] = "Email is required."
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs["email"] = "Enter a valid email address."
	}

	if password != confirmPassword {
		errs["confirmPassword"] = "Passwords do not match."
	}

	hasUpper := hasUpperReg.MatchString(password)
	hasLower := hasLowerReg.MatchString(password)
	hasDigit := hasDigitReg.MatchString(password)
	hasSymbol := hasSymbolReg.MatchString(password)

	if len(password) < 12 || !hasUpper || !hasLower || !hasDigit || !hasSymbol {
		errs["password"] = "Password must be at least 12 characters and include uppercase, lowercase, number, and symbol."
	}

	return errs
}

func (s *Service) mapCognitoSignUpError(err error) (string, map[string]string, int) {
	fieldErrs := map[string]string{}

	var invalidPw *ctypes.InvalidPasswordException
	if errors.As(err, &invalidPw) {
		fieldErrs["password"] = "Password must include uppercase, lowercase, number, and symbol (min 12)."
		return "Please fix the highlighted fields.", fieldErrs, http.StatusBadRequest
	}

	var userExists *ctypes.UsernameExistsException
	if errors.As(err, &userExists) {
		fieldErrs["email"] = "An account with this email already exists."
		return "Try logging in instead.", fieldErrs, http.StatusBadRequest
	}

	var invalidParam *ctypes.InvalidParameterException
	if errors.As(err, &invalidParam) {
		return "Some details are invalid. Please review and try again.", fieldErrs, http.StatusBadRequest
	}

	s.logger.WithError(err).Error("unhandled cognito signup error")

	return "Unable to create account right now. Please try again.", fieldErrs, http.StatusInternalServerError
}
