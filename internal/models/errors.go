package models

import "errors"

var (
	ErrPromotionNotFound = errors.New("promotion not found")
	ErrInvalidPromotion  = errors.New("invalid promotion definition")
	ErrProductNotFound   = errors.New("product not found")
)
