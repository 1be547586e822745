package db

import (
	"database/sql"
	"fmt"

	"github.com/dmcconeghy/CL-backend-assessment/config"
	"github.com/dmcconeghy/CL-backend-assessment/logger"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// ConnectDB establishes a connection to the database.
func ConnectDB(cfg *config.Config) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Successfully connected to the database")
	return conn, nil
}

// InitDB initializes the database schema, creating tables if they don't exist.
func InitDB(conn *sql.DB) error {
	if err := createUsersTable(conn); err != nil {
		return err
	}
	if err := createAudioTable(conn); err != nil {
		return err
	}
	if err := createTicksTable(conn); err != nil {
		return err
	}

	logger.Info("Database initialization completed")
	return nil
}

func createUsersTable(conn *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		address VARCHAR(255) NOT NULL,
		image VARCHAR(255) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	);
	`
	if _, err := conn.Exec(query); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	return nil
}

func createAudioTable(conn *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS audio (
		session_id BIGINT PRIMARY KEY,
		user_id INT NOT NULL,
		selected_tick TINYINT NOT NULL,
		step_count TINYINT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		CONSTRAINT fk_audio_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);
	`
	if _, err := conn.Exec(query); err != nil {
		return fmt.Errorf("failed to create audio table: %w", err)
	}
	return nil
}

func createTicksTable(conn *sql.DB) error {
	// ticks_id is the tick's position (0-14) within its session.
	query := `
	CREATE TABLE IF NOT EXISTS ticks (
		ticks_id INT NOT NULL,
		session_id BIGINT NOT NULL,
		tick DECIMAL(6,2) NOT NULL,
		PRIMARY KEY (ticks_id, session_id),
		CONSTRAINT fk_ticks_session FOREIGN KEY (session_id) REFERENCES audio(session_id) ON DELETE CASCADE
	);
	`
	if _, err := conn.Exec(query); err != nil {
		return fmt.Errorf("failed to create ticks table: %w", err)
	}
	return nil
}
