package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/peekpark/peekpark/domain"
	"github.com/peekpark/peekpark/internal/infrastructure/auth"
	"github.com/peekpark/peekpark/internal/infrastructure/repositories"
	"github.com/peekpark/peekpark/internal/metrics"
	"github.com/peekpark/peekpark/internal/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testStack is the shared provider side: users table, Redis, SMS and revocations
type testStack struct {
	db       *gorm.DB
	users    domain.UserRepository
	mr       *miniredis.Miniredis
	sms      *mocks.MockNotificationService
	feed     *mocks.MockRevocationFeed
	provider *PhoneAuthProvider
}

// testDevice is one installation of the app talking to the shared stack
type testDevice struct {
	id       *mocks.MockDeviceIdentity
	store    *mocks.MockLocalStore
	audit    *mocks.MockAuditLogger
	metrics  *metrics.Metrics
	identity *DeviceBindingService
	session  *SessionService
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&repositories.DBUser{}))

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	sms := mocks.NewMockNotificationService()
	feed := mocks.NewMockRevocationFeed()
	otp := NewOTPService(sms, auth.NewCodeHasher(4), redisClient, createTestOTPConfig(t))
	sessions := repositories.NewSessionRepository(redisClient, time.Hour)
	tokens := auth.NewJWTService("test-secret", "peekpark-test", time.Hour)

	return &testStack{
		db:       db,
		users:    repositories.NewUserRepository(db),
		mr:       mr,
		sms:      sms,
		feed:     feed,
		provider: NewPhoneAuthProvider(otp, sessions, tokens, feed, redisClient, zerolog.Nop()),
	}
}

// device starts a fresh installation with its own local store
func (st *testStack) device(t *testing.T, deviceID string) *testDevice {
	t.Helper()
	return st.boot(t, mocks.NewMockDeviceIdentity(deviceID), mocks.NewMockLocalStore())
}

// restart simulates the process restarting on the same device
func (st *testStack) restart(t *testing.T, d *testDevice) *testDevice {
	t.Helper()
	d.session.Stop()
	return st.boot(t, d.id, d.store)
}

func (st *testStack) boot(t *testing.T, id *mocks.MockDeviceIdentity, store *mocks.MockLocalStore) *testDevice {
	t.Helper()

	audit := mocks.NewMockAuditLogger()
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	identity := NewDeviceBindingService(id, st.users, st.provider, audit, zerolog.Nop())
	session := NewSessionService(identity, store, st.feed, m, audit, zerolog.Nop())
	require.NoError(t, session.Start(context.Background()))
	t.Cleanup(session.Stop)

	return &testDevice{id: id, store: store, audit: audit, metrics: m, identity: identity, session: session}
}

// send requests a code and returns the challenge id with the delivered code
func (st *testStack) send(t *testing.T, d *testDevice, phone string) (string, string) {
	t.Helper()
	result, err := d.session.SendOTP(context.Background(), phone)
	require.NoError(t, err)
	return result.ChallengeID, sentCode(t, st.sms)
}

// signUp registers phone from d under name
func (st *testStack) signUp(t *testing.T, d *testDevice, phone, name string) *domain.AuthResult {
	t.Helper()
	challengeID, code := st.send(t, d, phone)
	result, err := d.session.VerifyOTP(context.Background(), challengeID, code, name)
	require.NoError(t, err)
	return result
}

// sessionKeys lists the open provider sessions in Redis
func (st *testStack) sessionKeys() []string {
	var keys []string
	for _, k := range st.mr.Keys() {
		if strings.HasPrefix(k, "session:") && !strings.HasPrefix(k, "session:subject:") {
			keys = append(keys, k)
		}
	}
	return keys
}
