// Package migrations embeds the SQL migration files into the binary so that
// Gray Logic Studio can migrate its database without the files on disk.
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
package migrations

import "embed"

// FS holds every *.sql file of this directory at its root.
//
//go:embed *.sql
var FS embed.FS
