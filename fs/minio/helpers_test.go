package minio_test

import "github.com/minio/minio-go/v7/pkg/credentials"

func credentialsFor(access, secret string) *credentials.Credentials {
	return credentials.NewStaticV4(access, secret, "")
}
