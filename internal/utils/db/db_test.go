package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type secretsFake struct {
	valor  *string
	err    error
	pedido *secretsmanager.GetSecretValueInput
}

func (f *secretsFake) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.pedido = in
	if f.err != nil {
		return nil, f.err
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: f.valor}, nil
}

func TestLerSecret(t *testing.T) {
	ctx := context.Background()

	t.Run("decodifica usuário e senha", func(t *testing.T) {
		fake := &secretsFake{valor: aws.String(`{"username":"app","password":"s3nha"}`)}
		creds, err := LerSecret(ctx, fake, "prod/afiliados/db")
		require.NoError(t, err)
		assert.Equal(t, "app", creds.Username)
		assert.Equal(t, "s3nha", creds.Password)
		assert.Equal(t, "prod/afiliados/db", aws.ToString(fake.pedido.SecretId))
		assert.Equal(t, "AWSCURRENT", aws.ToString(fake.pedido.VersionStage))
	})

	t.Run("propaga erro do Secrets Manager", func(t *testing.T) {
		fake := &secretsFake{err: errors.New("AccessDenied")}
		_, err := LerSecret(ctx, fake, "x")
		assert.ErrorContains(t, err, "AccessDenied")
	})

	t.Run("rejeita secret incompleto", func(t *testing.T) {
		fake := &secretsFake{valor: aws.String(`{"username":"app"}`)}
		_, err := LerSecret(ctx, fake, "x")
		assert.Error(t, err)
	})

	t.Run("rejeita JSON inválido", func(t *testing.T) {
		fake := &secretsFake{valor: aws.String(`nao-e-json`)}
		_, err := LerSecret(ctx, fake, "x")
		assert.Error(t, err)
	})
}

func TestViolacaoUnica(t *testing.T) {
	assert.False(t, ViolacaoUnica(nil))
	assert.True(t, ViolacaoUnica(gorm.ErrDuplicatedKey))
	assert.True(t, ViolacaoUnica(fmt.Errorf("inserir: %w", gorm.ErrDuplicatedKey)))
	assert.True(t, ViolacaoUnica(errors.New("UNIQUE constraint failed: links.code")))
	assert.False(t, ViolacaoUnica(gorm.ErrRecordNotFound))
}

func TestMigracoesEmbutidas(t *testing.T) {
	src, err := iofs.New(migrationsFS, "migrations")
	require.NoError(t, err)
	defer src.Close()

	versao, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), versao)

	up, _, err := src.ReadUp(versao)
	require.NoError(t, err)
	up.Close()

	down, _, err := src.ReadDown(versao)
	require.NoError(t, err)
	down.Close()
}
