package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/jhoicas/Reservas-api/pkg/jwt"
)

const testSecret = "secreto-de-prueba"

func TestGenerateYParse_IdaYVuelta(t *testing.T) {
	token, err := jwt.Generate(testSecret, "user-1", "wh-1", "reservas-api", 60)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, warehouseID, err := jwt.Parse(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "wh-1", warehouseID)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	token, err := jwt.Generate(testSecret, "user-1", "wh-1", "reservas-api", 60)
	require.NoError(t, err)

	_, _, err = jwt.Parse("otro-secreto", token)
	require.Error(t, err)
}

func TestParse_TokenExpirado(t *testing.T) {
	token, err := jwt.Generate(testSecret, "user-1", "wh-1", "reservas-api", -5)
	require.NoError(t, err)

	_, _, err = jwt.Parse(testSecret, token)
	require.Error(t, err)
}

func TestParse_TokenMalformado(t *testing.T) {
	_, _, err := jwt.Parse(testSecret, "esto.no.es-un-token")
	require.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := jwt.Generate("", "user-1", "wh-1", "reservas-api", 60)
	require.Error(t, err)

	_, _, err = jwt.Parse("", "lo-que-sea")
	require.Error(t, err)
}
