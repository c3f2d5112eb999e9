// Package authz holds the table deciding which roles may invoke which
// operation. Transport code consults it before calling a usecase.
package authz

import "greencoin.backend/internal/domain/entities"

// Operation names an externally reachable operation.
type Operation string

const (
	OpRegisterUser    Operation = "user.register"
	OpGetProfile      Operation = "user.profile"
	OpCreateReport    Operation = "report.create"
	OpClaimReport     Operation = "report.claim"
	OpCompleteReport  Operation = "report.complete"
	OpListOpen        Operation = "report.list_open"
	OpListNearby      Operation = "report.list_nearby"
	OpListOwnReports  Operation = "report.list_own"
	OpListOwnPickups  Operation = "report.list_pickups"
	OpGetReport       Operation = "report.get"
	OpGetBalance      Operation = "coins.balance"
	OpListTransaction Operation = "coins.history"
	OpRedeemCoins     Operation = "coins.redeem"
	OpSubscribe       Operation = "events.subscribe"
)

var (
	everyone = []entities.UserRole{
		entities.UserRoleCitizen,
		entities.UserRoleCollector,
		entities.UserRoleAuthority,
		entities.UserRoleAdmin,
	}
	collectors = []entities.UserRole{entities.UserRoleCollector}
	reporters  = []entities.UserRole{entities.UserRoleCitizen, entities.UserRoleAdmin}
	earners    = []entities.UserRole{entities.UserRoleCitizen, entities.UserRoleCollector}
)

// Policy maps an operation to the set of roles allowed to perform it.
// Operations missing from the table are denied.
type Policy map[Operation]map[entities.UserRole]bool

// DefaultPolicy returns the service's authorization table.
func DefaultPolicy() Policy {
	p := Policy{}
	p.Allow(OpRegisterUser, everyone...)
	p.Allow(OpGetProfile, everyone...)
	p.Allow(OpCreateReport, reporters...)
	p.Allow(OpClaimReport, collectors...)
	p.Allow(OpCompleteReport, collectors...)
	p.Allow(OpListOpen, everyone...)
	p.Allow(OpListNearby, everyone...)
	p.Allow(OpListOwnReports, everyone...)
	p.Allow(OpListOwnPickups, collectors...)
	p.Allow(OpGetReport, everyone...)
	p.Allow(OpGetBalance, everyone...)
	p.Allow(OpListTransaction, everyone...)
	p.Allow(OpRedeemCoins, earners...)
	p.Allow(OpSubscribe, everyone...)
	return p
}

// Allow grants op to roles.
func (p Policy) Allow(op Operation, roles ...entities.UserRole) {
	set, ok := p[op]
	if !ok {
		set = map[entities.UserRole]bool{}
		p[op] = set
	}
	for _, r := range roles {
		set[r] = true
	}
}

// Allowed reports whether role may perform op.
func (p Policy) Allowed(op Operation, role entities.UserRole) bool {
	return p[op][role]
}
