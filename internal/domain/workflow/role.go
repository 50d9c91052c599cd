package workflow

// Role is a closed enumeration of the actor roles known to the workflow.
// Role names match the back-office department names used by the company.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleReception   Role = "recepcion"
	RoleLiquidation Role = "liquidacion"
	RoleAudit       Role = "auditoria"
	RoleScheduling  Role = "programacion"
	RolePayments    Role = "pagos"
	RoleSettlement  Role = "finiquito"
)

var validRoles = map[Role]bool{
	RoleAdmin:       true,
	RoleReception:   true,
	RoleLiquidation: true,
	RoleAudit:       true,
	RoleScheduling:  true,
	RolePayments:    true,
	RoleSettlement:  true,
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// IsValid returns true if the role is part of the closed role set
func (r Role) IsValid() bool {
	return validRoles[r]
}
