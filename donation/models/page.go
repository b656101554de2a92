package models

import (
    "errors"
    "time"
)

var ErrInvalidPage = errors.New("invalid page")

// Page is one donation landing page: who receives the money and under which key.
type Page struct {
    ID              string    `json:"id"`
    Slug            string    `json:"slug"`
    PixKey          string    `json:"pix_key"`
    BeneficiaryName string    `json:"beneficiary_name"`
    BeneficiaryCity string    `json:"beneficiary_city"`
    CreatedAt       time.Time `json:"created_at"`
}

type CreatePage struct {
    Slug            string `json:"slug"`
    PixKey          string `json:"pix_key"`
    BeneficiaryName string `json:"beneficiary_name"`
    BeneficiaryCity string `json:"beneficiary_city"`
}
