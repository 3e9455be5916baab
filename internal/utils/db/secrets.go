package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SecretsAPI é o subconjunto do cliente do Secrets Manager usado aqui.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// BuscarCredenciais lê usuário e senha do banco no AWS Secrets Manager.
func BuscarCredenciais(ctx context.Context, secretID string) (*Credentials, error) {
	if secretID == "" {
		return nil, errors.New("DB_SECRET_ID não definido")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("carregar configuração AWS: %w", err)
	}
	return LerSecret(ctx, secretsmanager.NewFromConfig(awsCfg), secretID)
}

// LerSecret busca o secret e decodifica {"username","password"}.
func LerSecret(ctx context.Context, api SecretsAPI, secretID string) (*Credentials, error) {
	out, err := api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(secretID),
		VersionStage: aws.String("AWSCURRENT"),
	})
	if err != nil {
		return nil, fmt.Errorf("ler secret %s: %w", secretID, err)
	}
	if out.SecretString == nil {
		return nil, fmt.Errorf("secret %s sem SecretString", secretID)
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(*out.SecretString), &creds); err != nil {
		return nil, fmt.Errorf("decodificar secret: %w", err)
	}
	if creds.Username == "" || creds.Password == "" {
		return nil, fmt.Errorf("secret %s sem username/password", secretID)
	}
	return &creds, nil
}
