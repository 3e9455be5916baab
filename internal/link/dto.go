package link

import "github.com/google/uuid"

type CriarLinkDTO struct {
	ProductID  uuid.UUID `json:"productId" validate:"required"`
	CustomSlug *string   `json:"customSlug" validate:"omitempty,max=80"`
}
