package service

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrValidation          = errors.New("validation")            // 400
	ErrUnauthorized        = errors.New("unauthorized")          // 401
	ErrForbidden           = errors.New("forbidden")             // 403
	ErrNotFound            = errors.New("not found")             // 404
	ErrConflict            = errors.New("conflict")              // 409
	ErrPaymentNotCompleted = errors.New("payment not completed") // 400
	ErrCouponExpired       = errors.New("coupon expired")        // 404
)

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
