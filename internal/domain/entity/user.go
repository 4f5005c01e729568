package entity

// Roles de la red hospitalaria.
const (
	RoleAuxiliar         = "auxiliar"
	RoleLider            = "lider"
	RoleSupervisor       = "supervisor"
	RoleAlmacen          = "almacen"
	RoleGerente          = "gerente"
	RoleGerenteAlmacen   = "gerente_almacen"
	RoleCadenaSuministro = "cadena_suministro"
)

// Actor es la identidad autenticada que entrega el colaborador de sesión.
// El núcleo confía en ella y no valida credenciales.
type Actor struct {
	ID         string
	Role       string
	HospitalID string
}

// ValidRole indica si role pertenece al catálogo de roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAuxiliar, RoleLider, RoleSupervisor, RoleAlmacen,
		RoleGerente, RoleGerenteAlmacen, RoleCadenaSuministro:
		return true
	}
	return false
}
