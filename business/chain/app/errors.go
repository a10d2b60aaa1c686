package app

import "github.com/fd1az/aptos-dex/internal/apperror"

// IsNotFound reports whether err means the account, resource or
// transaction does not exist on chain.
func IsNotFound(err error) bool {
	return apperror.GetCode(err) == apperror.CodeResourceNotFound
}
