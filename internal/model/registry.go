// Package model is where table definitions are declared and handed to the
// schema registry. Each model is a Bun struct; registering it is an explicit
// call in Register, never a side effect of defining the type.
package model

import "github.com/iliyamo/mysql-starter/internal/database"

// Register declares the service's tables on reg, dependencies first, e.g.
//
//	reg.Register((*Author)(nil))
//	reg.Register((*Book)(nil), (*Author)(nil))
//
// No tables are declared yet, so the startup schema sync has nothing to create.
func Register(reg *database.Registry) {}
