package server

import (
	"memoreal/internal/auth"
	"memoreal/internal/models"
)

func validateID(id string) bool {
	_, err := auth.NormalizeIdentity(id)
	return err == nil
}

func normalizeType(value string) (models.CapsuleType, error) {
	capsuleType, err := models.ParseCapsuleType(value)
	if err != nil {
		return "", badRequestCode(err, ErrCodeInvalidType)
	}
	return capsuleType, nil
}
