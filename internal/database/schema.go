package database

// Таблицы журнала. Используются EnsureSchema и cmd/db_init.
const (
	CreateCyclesTableSQL = `CREATE TABLE IF NOT EXISTS agent_cycles (
		id INT AUTO_INCREMENT PRIMARY KEY,
		run_id VARCHAR(64) NOT NULL,
		cycle INT NOT NULL,
		state VARCHAR(32) NOT NULL,
		enemies INT NOT NULL DEFAULT 0,
		ropes INT NOT NULL DEFAULT 0,
		platforms INT NOT NULL DEFAULT 0,
		on_rope BOOLEAN DEFAULT FALSE,
		target_x INT,
		target_y INT,
		action VARCHAR(255),
		created_at TIMESTAMP(3) DEFAULT CURRENT_TIMESTAMP(3),
		INDEX idx_run (run_id, cycle)
	)`

	CreateVerificationsTableSQL = `CREATE TABLE IF NOT EXISTS action_verifications (
		id INT AUTO_INCREMENT PRIMARY KEY,
		run_id VARCHAR(64) NOT NULL,
		label VARCHAR(64) NOT NULL,
		ratio DOUBLE NOT NULL,
		verdict VARCHAR(16) NOT NULL,
		effect BOOLEAN NOT NULL,
		created_at TIMESTAMP(3) DEFAULT CURRENT_TIMESTAMP(3),
		INDEX idx_run (run_id)
	)`

	insertCycleSQL = `INSERT INTO agent_cycles (run_id, cycle, state, enemies, ropes, platforms, on_rope, target_x, target_y, action, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	insertVerificationSQL = `INSERT INTO action_verifications (run_id, label, ratio, verdict, effect, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
)
