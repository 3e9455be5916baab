package link

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/innexar/afiliados-api/internal/apperr"
	"github.com/innexar/afiliados-api/internal/models"
	"github.com/innexar/afiliados-api/internal/produtos"
)

// Link liga um afiliado a um produto. Só pode haver um link ativo por par;
// o código continua reservado mesmo depois da remoção.
type Link struct {
	models.Base
	AfiliadoID  uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_links_afiliado_produto,where:deleted_at IS NULL" json:"affiliateId"`
	ProdutoID   uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_links_afiliado_produto,where:deleted_at IS NULL" json:"productId"`
	Code        string            `gorm:"size:16;not null;uniqueIndex" json:"code"`
	CustomSlug  *string           `gorm:"size:80;uniqueIndex" json:"customSlug,omitempty"`
	TargetURL   string            `gorm:"size:600;not null" json:"targetUrl"`
	TotalClicks int64             `gorm:"not null;default:0" json:"totalClicks"`
	Conversions int64             `gorm:"not null;default:0" json:"conversions"`
	DeletedAt   gorm.DeletedAt    `gorm:"index" json:"-"`
	Produto     *produtos.Produto `gorm:"foreignKey:ProdutoID" json:"product,omitempty"`
}

func (Link) TableName() string { return "links" }

// Visita registra um clique rastreado. O IP é guardado só como hash.
type Visita struct {
	models.Base
	AfiliadoID uuid.UUID `gorm:"type:uuid;not null;index" json:"affiliateId"`
	LinkID     uuid.UUID `gorm:"type:uuid;not null;index" json:"linkId"`
	IPHash     string    `gorm:"size:64" json:"-"`
	UserAgent  string    `gorm:"size:500" json:"userAgent"`
	Referer    string    `gorm:"size:500" json:"referer"`
}

func (Visita) TableName() string { return "visitas" }

var (
	ErrLinkDuplicado     = apperr.NovoConflito("DUPLICATE_LINK", "Você já possui um link para este produto")
	ErrLinkNaoEncontrado = apperr.NovoNaoEncontrado("LINK_NOT_FOUND", "Link não encontrado")
	ErrSlugEmUso         = apperr.NovoConflito("SLUG_TAKEN", "Slug já em uso")
	ErrSlugInvalido      = apperr.NovoValidacao("INVALID_SLUG",
		"Slug deve ter de 3 a 80 caracteres: letras minúsculas, números e hífens")
)

// Migrate cria as tabelas no banco de dados. Produtos precisam existir antes.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Link{}, &Visita{})
}
