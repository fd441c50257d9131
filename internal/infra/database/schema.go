package database

import (
	"context"
	"fmt"
)

// Notification channels raised by the row triggers below. The payload is
// the owning uid.
const (
	ProfilesChannel  = "user_profiles_changed"
	AddressesChannel = "user_addresses_changed"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS user_profiles (
  uid          TEXT PRIMARY KEY,
  name         TEXT NOT NULL DEFAULT '',
  email        TEXT NOT NULL DEFAULT '',
  phone        TEXT NOT NULL DEFAULT '',
  profile_pic  TEXT NOT NULL DEFAULT '',
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS user_addresses (
  id             TEXT PRIMARY KEY,
  user_id        TEXT NOT NULL,
  address_line1  TEXT NOT NULL,
  address_line2  TEXT NOT NULL DEFAULT '',
  city           TEXT NOT NULL,
  state          TEXT NOT NULL DEFAULT '',
  postal_code    TEXT NOT NULL DEFAULT '',
  country        TEXT NOT NULL,
  type           TEXT NOT NULL DEFAULT 'home',
  created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS user_addresses_user_id_idx ON user_addresses (user_id, created_at, id);

CREATE OR REPLACE FUNCTION notify_user_profiles() RETURNS trigger AS $$
BEGIN
  PERFORM pg_notify('` + ProfilesChannel + `', COALESCE(NEW.uid, OLD.uid));
  RETURN NULL;
END;
$$ LANGUAGE plpgsql;

CREATE OR REPLACE FUNCTION notify_user_addresses() RETURNS trigger AS $$
BEGIN
  IF TG_OP = 'DELETE' THEN
    PERFORM pg_notify('` + AddressesChannel + `', OLD.user_id);
  ELSE
    PERFORM pg_notify('` + AddressesChannel + `', NEW.user_id);
  END IF;
  RETURN NULL;
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS user_profiles_notify ON user_profiles;
CREATE TRIGGER user_profiles_notify
  AFTER INSERT OR UPDATE OR DELETE ON user_profiles
  FOR EACH ROW EXECUTE FUNCTION notify_user_profiles();

DROP TRIGGER IF EXISTS user_addresses_notify ON user_addresses;
CREATE TRIGGER user_addresses_notify
  AFTER INSERT OR UPDATE OR DELETE ON user_addresses
  FOR EACH ROW EXECUTE FUNCTION notify_user_addresses();
`

// EnsureSchema creates the profile and address tables with their
// notification triggers. It is safe to run on every start.
func (d *DB) EnsureSchema(ctx context.Context) error {
	if _, err := d.Client.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("database: ensure schema: %w", err)
	}
	return nil
}
