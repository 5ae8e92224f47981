package errors

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	codeDuplicateKey              = 11000
	codeDocumentValidationFailure = 121

	MsgInvalidToken    = "Invalid token. Please log in again!"
	MsgExpiredToken    = "Your token has expired! Please log in again."
	MsgInvalidInput    = "Invalid input data."
	MsgSomethingFailed = "Something went wrong"
)

var (
	quotedValueRegex = regexp.MustCompile(`"(?:[^"\\]|\\.)*"`)
	dupKeyRegex      = regexp.MustCompile(`dup key: \{\s*(.*?)\s*\}`)
)

// Classify maps any error onto an AppError. Recognised store, token and
// validation failures get a fixed status and message; an AppError anywhere in
// the chain is returned as is; everything else becomes a non-operational 500.
func Classify(err error) *AppError {
	if err == nil {
		return nil
	}

	var castErr *CastError
	if errors.As(err, &castErr) {
		return Wrap(err, fmt.Sprintf("Invalid %s: %s.", castErr.Path, castErr.Value), http.StatusBadRequest)
	}

	if mongo.IsDuplicateKeyError(err) {
		return Wrap(err, fmt.Sprintf("Duplicate field value: %s. Please use another value!", duplicateValue(err)), http.StatusBadRequest)
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		messages := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			messages = append(messages, fmt.Sprintf("%s failed on the '%s' rule", fe.Field(), fe.Tag()))
		}
		return Wrap(err, MsgInvalidInput+" "+strings.Join(messages, ". "), http.StatusBadRequest).WithErrors(messages...)
	}

	if hasServerCode(err, codeDocumentValidationFailure) {
		return Wrap(err, MsgInvalidInput+" Document failed validation", http.StatusBadRequest)
	}

	// Expiry is checked first: jwt reports an expired token as both expired
	// and invalid-claims.
	if errors.Is(err, jwt.ErrTokenExpired) {
		return Wrap(err, MsgExpiredToken, http.StatusUnauthorized)
	}
	if isTokenError(err) {
		return Wrap(err, MsgInvalidToken, http.StatusUnauthorized)
	}

	if appErr, ok := AsAppError(err); ok {
		return appErr
	}

	return Internal(err.Error(), err)
}

func isTokenError(err error) bool {
	for _, target := range []error{
		jwt.ErrTokenMalformed,
		jwt.ErrTokenSignatureInvalid,
		jwt.ErrTokenUnverifiable,
		jwt.ErrTokenInvalidClaims,
		jwt.ErrTokenNotValidYet,
		jwt.ErrTokenRequiredClaimMissing,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func hasServerCode(err error, code int) bool {
	var se mongo.ServerError
	if errors.As(err, &se) {
		return se.HasErrorCode(code)
	}
	return false
}

// duplicateValue extracts the offending value from a duplicate-key message:
// E11000 duplicate key error collection: voyageiq.users index: email_1 dup key: { email: "a@b.io" }
// A compound key echoes every field of the key document.
func duplicateValue(err error) string {
	msg := err.Error()
	var keyDoc string
	if m := dupKeyRegex.FindStringSubmatch(msg); len(m) == 2 {
		keyDoc = m[1]
	}
	if compoundKey(keyDoc) {
		return keyDoc
	}
	if quoted := quotedValueRegex.FindString(msg); quoted != "" {
		return quoted
	}
	if keyDoc != "" {
		return keyDoc
	}
	return "unknown"
}

// compoundKey reports whether a key document lists more than one field.
// Commas inside quoted values do not count.
func compoundKey(keyDoc string) bool {
	return strings.Contains(quotedValueRegex.ReplaceAllString(keyDoc, `""`), ",")
}
