package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestClassify_Nil(t *testing.T) {
	assert.Nil(t, Classify(nil))
}

func TestClassify_KnownKinds(t *testing.T) {
	duplicate := mongo.WriteException{
		WriteErrors: []mongo.WriteError{{
			Code:    11000,
			Message: `E11000 duplicate key error collection: voyageiq.users index: email_1 dup key: { email: "ada@example.com" }`,
		}},
	}
	schemaRejected := mongo.WriteException{
		WriteErrors: []mongo.WriteError{{Code: 121, Message: "Document failed validation"}},
	}

	tests := []struct {
		name        string
		err         error
		wantCode    int
		wantMessage string
	}{
		{
			name:        "cast error",
			err:         &CastError{Path: "price", Value: "cheap"},
			wantCode:    http.StatusBadRequest,
			wantMessage: "Invalid price: cheap.",
		},
		{
			name:        "duplicate key",
			err:         fmt.Errorf("failed to insert user: %w", duplicate),
			wantCode:    http.StatusBadRequest,
			wantMessage: `Duplicate field value: "ada@example.com". Please use another value!`,
		},
		{
			name:        "document validation",
			err:         schemaRejected,
			wantCode:    http.StatusBadRequest,
			wantMessage: "Invalid input data. Document failed validation",
		},
		{
			name:        "expired token",
			err:         fmt.Errorf("%w: %w", jwt.ErrTokenInvalidClaims, jwt.ErrTokenExpired),
			wantCode:    http.StatusUnauthorized,
			wantMessage: MsgExpiredToken,
		},
		{
			name:        "malformed token",
			err:         fmt.Errorf("token is malformed: %w", jwt.ErrTokenMalformed),
			wantCode:    http.StatusUnauthorized,
			wantMessage: MsgInvalidToken,
		},
		{
			name:        "bad signature",
			err:         jwt.ErrTokenSignatureInvalid,
			wantCode:    http.StatusUnauthorized,
			wantMessage: MsgInvalidToken,
		},
		{
			name:        "operational error passes through",
			err:         fmt.Errorf("lookup: %w", NotFound("Tour")),
			wantCode:    http.StatusNotFound,
			wantMessage: "Tour not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantCode, got.StatusCode)
			assert.Equal(t, tt.wantMessage, got.Message)
			assert.Equal(t, StatusFail, got.Status)
			assert.True(t, got.IsOperational)
		})
	}
}

func TestClassify_UnknownErrorIsNonOperational(t *testing.T) {
	got := Classify(errors.New("nil map write"))

	require.NotNil(t, got)
	assert.Equal(t, http.StatusInternalServerError, got.StatusCode)
	assert.Equal(t, StatusError, got.Status)
	assert.False(t, got.IsOperational)
	assert.Equal(t, "nil map write", got.Message)
}

func TestDuplicateValue(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want string
	}{
		{
			name: "single key",
			msg:  `E11000 duplicate key error collection: voyageiq.users index: email_1 dup key: { email: "ada@example.com" }`,
			want: `"ada@example.com"`,
		},
		{
			name: "comma inside a single value",
			msg:  `E11000 duplicate key error collection: voyageiq.tours index: name_1 dup key: { name: "Sea, Sun and Sand" }`,
			want: `"Sea, Sun and Sand"`,
		},
		{
			name: "compound key",
			msg:  `E11000 duplicate key error collection: voyageiq.reviews index: tour_1_user_1 dup key: { tour: "5c88fa8cf4afda39709c2951", user: "5c8a1d5b0190b214360dc057" }`,
			want: `tour: "5c88fa8cf4afda39709c2951", user: "5c8a1d5b0190b214360dc057"`,
		},
		{
			name: "compound key with object ids",
			msg:  `E11000 duplicate key error collection: voyageiq.reviews index: tour_1_user_1 dup key: { tour: ObjectId('5c88fa8cf4afda39709c2951'), user: ObjectId('5c8a1d5b0190b214360dc057') }`,
			want: `tour: ObjectId('5c88fa8cf4afda39709c2951'), user: ObjectId('5c8a1d5b0190b214360dc057')`,
		},
		{
			name: "no key document",
			msg:  "E11000 duplicate key error",
			want: "unknown",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, duplicateValue(errors.New(tt.msg)))
		})
	}
}

func TestDuplicateValue_FallsBackToKeyDocument(t *testing.T) {
	err := errors.New("E11000 duplicate key error dup key: { tour: ObjectId('65a1'), user: 7 }")

	got := duplicateValue(err)

	assert.True(t, strings.HasPrefix(got, "tour:"), "got %q", got)
}
