package dto

import (
	"fmt"
	"strings"

	"panel/internal/domain"
)

type GetPartnerListQuery struct {
	LoginToken string `json:"login_token"`
}

type AddPartnerQuery struct {
	LoginToken string        `json:"login_token"`
	Partner    CreatePartner `json:"partner"`
}

type DeletePartnerQuery struct {
	LoginToken string `json:"login_token"`
	ID         string `json:"id"`
}

type CreatePartner struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	ImageType string        `json:"image_type"`
	Short     string        `json:"short"`
	Links     []domain.Link `json:"links"`
	Type      string        `json:"type"`
}

func (p CreatePartner) Validate() error {
	switch {
	case p.ID == "":
		return fmt.Errorf("%w: partner id must not be empty", domain.ErrValidation)
	case p.Name == "":
		return fmt.Errorf("%w: partner name must not be empty", domain.ErrValidation)
	case p.Short == "":
		return fmt.Errorf("%w: partner short description must not be empty", domain.ErrValidation)
	case len(p.Links) == 0:
		return fmt.Errorf("%w: partner must have at least one link", domain.ErrValidation)
	}
	for _, l := range p.Links {
		if l.Name == "" {
			return fmt.Errorf("%w: link name must not be empty", domain.ErrValidation)
		}
		if !strings.HasPrefix(l.Value, "https://") {
			return fmt.Errorf("%w: link %q must be https", domain.ErrValidation, l.Name)
		}
	}
	return nil
}

type PartnerList struct {
	Partners     []domain.Partner     `json:"partners"`
	PartnerTypes []domain.PartnerType `json:"partner_types"`
}
