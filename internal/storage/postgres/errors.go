package postgres

import (
	"errors"
	"net"

	"github.com/felixgeelhaar/classtrack/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sqlc-dev/pqtype"
)

// uniqueViolation is the SQLSTATE for unique_violation
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// translate maps unique violations onto conflict and passes other errors through
func translate(err error, conflict *domain.Error) error {
	if isUniqueViolation(err) {
		return conflict.WithCause(err)
	}
	return err
}

// inet encodes a textual client address for an INET column; unparseable
// addresses are stored as NULL
func inet(addr string) pqtype.Inet {
	ip := net.ParseIP(addr)
	if ip == nil {
		return pqtype.Inet{}
	}
	bits := 128
	if v4 := ip.To4(); v4 != nil {
		ip, bits = v4, 32
	}
	return pqtype.Inet{
		IPNet: net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)},
		Valid: true,
	}
}
