package database

import (
	"context"
	"database/sql"
)

// schema holds the CREATE TABLE statements for every table the
// application owns.  Statements are idempotent so EnsureSchema can run
// on every startup.  Domain tables use CHAR(36) UUID keys generated
// app-side; users keep auto-increment IDs.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		full_name VARCHAR(255) NULL,
		role ENUM('admin','colaborador') NOT NULL DEFAULT 'colaborador',
		colaborador_id CHAR(36) NULL,
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_refresh_tokens_hash (token_hash),
		CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS obras (
		id CHAR(36) NOT NULL PRIMARY KEY,
		nombre VARCHAR(100) NOT NULL,
		descripcion TEXT NULL,
		created_by BIGINT UNSIGNED NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS funciones (
		id CHAR(36) NOT NULL PRIMARY KEY,
		obra_id CHAR(36) NOT NULL,
		nombre VARCHAR(100) NOT NULL,
		descripcion TEXT NULL,
		fecha DATETIME NOT NULL,
		ubicacion VARCHAR(255) NOT NULL,
		capacidad_total INT UNSIGNED NOT NULL,
		precio_cents INT UNSIGNED NOT NULL DEFAULT 0,
		estado ENUM('ACTIVA','CANCELADA','FINALIZADA') NOT NULL DEFAULT 'ACTIVA',
		created_by BIGINT UNSIGNED NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		CONSTRAINT fk_funciones_obra FOREIGN KEY (obra_id) REFERENCES obras (id)
	)`,
	`CREATE TABLE IF NOT EXISTS colaboradores (
		id CHAR(36) NOT NULL PRIMARY KEY,
		nombre VARCHAR(100) NOT NULL,
		email VARCHAR(255) NOT NULL,
		telefono VARCHAR(50) NULL,
		rol VARCHAR(100) NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS invitados (
		id CHAR(36) NOT NULL PRIMARY KEY,
		funcion_id CHAR(36) NOT NULL,
		colaborador_id CHAR(36) NULL,
		nombre VARCHAR(100) NOT NULL,
		email VARCHAR(255) NULL,
		telefono VARCHAR(50) NULL,
		cantidad_tickets INT UNSIGNED NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_invitados_funcion (funcion_id),
		CONSTRAINT fk_invitados_funcion FOREIGN KEY (funcion_id) REFERENCES funciones (id),
		CONSTRAINT fk_invitados_colaborador FOREIGN KEY (colaborador_id) REFERENCES colaboradores (id) ON DELETE SET NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id CHAR(36) NOT NULL PRIMARY KEY,
		funcion_id CHAR(36) NOT NULL,
		invitado_id CHAR(36) NOT NULL,
		qr_code VARCHAR(128) NOT NULL UNIQUE,
		usado TINYINT(1) NOT NULL DEFAULT 0,
		validated_at DATETIME NULL,
		validated_by BIGINT UNSIGNED NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_tickets_invitado (invitado_id),
		KEY idx_tickets_funcion (funcion_id),
		CONSTRAINT fk_tickets_funcion FOREIGN KEY (funcion_id) REFERENCES funciones (id),
		CONSTRAINT fk_tickets_invitado FOREIGN KEY (invitado_id) REFERENCES invitados (id) ON DELETE CASCADE
	)`,
}

// EnsureSchema creates all application tables if they do not exist.
// Intended for development and test bootstrapping; production
// deployments run migrations out of band.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
