package runtime_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/formstate/internal/runtime"
	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contactFields() []domain.FieldDescriptor {
	return []domain.FieldDescriptor{
		{Key: "name", Value: domain.String("")},
		{Key: "email", Value: domain.String("a@b.com"), InitialValueIsOk: domain.Flag(true)},
		{Key: "age", Value: domain.Number(30), CheckForSaveable: domain.Flag(false)},
		{Key: "newsletter", Value: domain.Bool(false), CheckForDirty: domain.Flag(false)},
	}
}

func newEngine(t *testing.T, cfg runtime.Config, opts ...runtime.EngineOption) *runtime.Engine {
	t.Helper()
	e, err := runtime.NewEngine(cfg, opts...)
	require.NoError(t, err)
	return e
}

func TestEngine_FreshIsClean(t *testing.T) {
	cases := map[string][]domain.FieldDescriptor{
		"Empty":   nil,
		"Single":  {{Key: "x", Value: domain.Null()}},
		"Contact": contactFields(),
	}

	for name, descriptors := range cases {
		t.Run(name, func(t *testing.T) {
			e := newEngine(t, runtime.Config{Descriptors: descriptors})
			assert.False(t, e.IsDirty())
			for key, field := range e.State().Data {
				assert.Equal(t, field.InitialValue, field.Value, "field %s", key)
			}
		})
	}
}

func TestEngine_NameScenario(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, runtime.Config{Descriptors: []domain.FieldDescriptor{
		{Key: "name", Value: domain.String(""), InitialValueIsOk: domain.Flag(false)},
	}})

	assert.False(t, e.IsDirty())
	assert.False(t, e.IsSaveable())

	require.NoError(t, e.ChangeValue(ctx, "name", domain.String("Ada")))
	assert.True(t, e.IsDirty())
	assert.True(t, e.IsSaveable())

	require.NoError(t, e.Reset(ctx))
	assert.False(t, e.IsDirty())
	assert.False(t, e.IsSaveable())
	assert.Equal(t, domain.String(""), e.Values()["name"])
}

func TestEngine_AcceptableBaselineScenario(t *testing.T) {
	e := newEngine(t, runtime.Config{Descriptors: []domain.FieldDescriptor{
		{Key: "email", Value: domain.String("a@b.com"), InitialValueIsOk: domain.Flag(true)},
	}})

	assert.False(t, e.IsDirty())
	assert.True(t, e.IsSaveable())
}

func TestEngine_ResetAfterMutations(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, runtime.Config{Descriptors: contactFields()})
	initial := e.State()

	require.NoError(t, e.ChangeValue(ctx, "name", domain.String("Ada")))
	require.NoError(t, e.ChangeValue(ctx, "age", domain.Number(31)))
	require.NoError(t, e.ChangeValue(ctx, "newsletter", domain.Bool(true)))
	require.True(t, e.IsDirty())

	once, err := e.Dispatch(ctx, domain.Reset())
	require.NoError(t, err)
	assert.False(t, once.IsDirty)
	assert.Equal(t, initial, once)

	twice, err := e.Dispatch(ctx, domain.Reset())
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestEngine_Reinitialize(t *testing.T) {
	ctx := context.Background()

	t.Run("Unknown Key Is Reported And Ignored", func(t *testing.T) {
		e := newEngine(t, runtime.Config{Descriptors: contactFields()})
		before := e.State()

		err := e.Reinitialize(ctx, map[string]domain.Value{"zip": domain.String("1000")})

		assert.ErrorIs(t, err, domain.ErrUnknownField)
		assert.Equal(t, before, e.State())
	})

	t.Run("Known Key Rebases", func(t *testing.T) {
		e := newEngine(t, runtime.Config{Descriptors: contactFields()})

		require.NoError(t, e.ChangeValue(ctx, "name", domain.String("Ada")))
		require.True(t, e.IsDirty())

		require.NoError(t, e.Reinitialize(ctx, map[string]domain.Value{"name": domain.String("Grace")}))
		assert.False(t, e.IsDirty(), "field matches its new baseline")

		require.NoError(t, e.ChangeValue(ctx, "name", domain.String("Linus")))
		require.NoError(t, e.Reset(ctx))
		assert.Equal(t, domain.String("Grace"), e.Values()["name"], "reset restores the rebased value")
	})
}

func TestEngine_ChangeValueUnknownKey(t *testing.T) {
	e := newEngine(t, runtime.Config{Descriptors: contactFields()})
	before := e.State()

	state, err := e.Dispatch(context.Background(), domain.ChangeValue("phone", domain.String("555")))

	var uerr *domain.UnknownFieldError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, domain.ActionChangeValue, uerr.Action)
	assert.Equal(t, before, state)
	assert.Equal(t, before, e.State())
}

func TestEngine_VacuousSubsets(t *testing.T) {
	ctx := context.Background()

	t.Run("Saveable Over Empty Subset", func(t *testing.T) {
		e := newEngine(t, runtime.Config{
			Descriptors:           []domain.FieldDescriptor{{Key: "name", Value: domain.String("")}},
			SaveableFieldsToCheck: []string{},
		})
		assert.True(t, e.IsSaveable())
	})

	t.Run("Dirty Over Empty Subset", func(t *testing.T) {
		e := newEngine(t, runtime.Config{
			Descriptors:        contactFields(),
			DirtyFieldsToCheck: []string{},
		})
		require.NoError(t, e.ChangeValue(ctx, "name", domain.String("Ada")))
		require.NoError(t, e.ChangeValue(ctx, "email", domain.String("x@y.z")))
		require.NoError(t, e.ChangeValue(ctx, "age", domain.Number(1)))
		require.NoError(t, e.ChangeValue(ctx, "newsletter", domain.Bool(true)))
		assert.False(t, e.IsDirty())
	})
}

func TestEngine_InferredSubsets(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, runtime.Config{Descriptors: contactFields()})

	assert.Equal(t, []string{"name", "email", "age"}, e.DirtyFieldsToCheck())
	assert.Equal(t, []string{"name", "email", "newsletter"}, e.SaveableFieldsToCheck())

	// newsletter is excluded from the dirty check.
	require.NoError(t, e.ChangeValue(ctx, "newsletter", domain.Bool(true)))
	assert.False(t, e.IsDirty())

	// age is excluded from the saveable check, so only name is still missing.
	assert.False(t, e.IsSaveable())
	require.NoError(t, e.ChangeValue(ctx, "name", domain.String("Ada")))
	assert.True(t, e.IsSaveable())
}

func TestEngine_RejectsEmptyKey(t *testing.T) {
	_, err := runtime.NewEngine(runtime.Config{Descriptors: []domain.FieldDescriptor{
		{Key: "ok"},
		{Key: ""},
	}})

	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "[1].key", verr.Key)
}

func TestEngine_ListenersOnlyOnFlagChange(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, runtime.Config{Descriptors: []domain.FieldDescriptor{
		{Key: "name", Value: domain.String("")},
	}})

	var events []domain.FlagEvent
	unsubscribe := e.Subscribe(func(_ context.Context, ev *domain.FlagEvent) {
		events = append(events, *ev)
	})

	require.NoError(t, e.ChangeValue(ctx, "name", domain.String("A")))
	require.Len(t, events, 2, "dirty and saveable both flip")
	assert.Equal(t, domain.FlagDirty, events[0].Flag)
	assert.True(t, events[0].Value)
	assert.Equal(t, domain.FlagSaveable, events[1].Flag)
	assert.True(t, events[1].State.IsDirty, "events carry the settled state")
	assert.True(t, events[1].State.IsSaveable)

	require.NoError(t, e.ChangeValue(ctx, "name", domain.String("Ad")))
	require.NoError(t, e.ChangeValue(ctx, "name", domain.String("Ada")))
	assert.Len(t, events, 2, "no notification while the flags stay the same")

	unsubscribe()
	unsubscribe()
	require.NoError(t, e.Reset(ctx))
	assert.Len(t, events, 2)
	assert.False(t, e.IsDirty())
}

func TestEngine_FlagTransitionsAreNotRecomputed(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, runtime.Config{Descriptors: []domain.FieldDescriptor{
		{Key: "name", Value: domain.String("")},
	}})

	state, err := e.Dispatch(ctx, domain.SetDirty(true))
	require.NoError(t, err)
	assert.True(t, state.IsDirty, "explicit flag transitions are taken as given")

	state, err = e.Dispatch(ctx, domain.ChangeValue("name", domain.String("")))
	require.NoError(t, err)
	assert.False(t, state.IsDirty, "the next data transition corrects it")
}

func TestEngine_Hooks(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	var transitions, rejected []domain.ActionType
	var flags []domain.FlagName
	hooks := domain.LifecycleHooks{
		OnTransition: func(_ context.Context, ev *domain.TransitionEvent) {
			assert.Equal(t, "signup", ev.FormName)
			assert.Equal(t, fixed, ev.Timestamp)
			transitions = append(transitions, ev.Action)
		},
		OnRejected: func(_ context.Context, ev *domain.TransitionEvent) {
			assert.Equal(t, domain.EventRejected, ev.Type)
			assert.Error(t, ev.Err)
			rejected = append(rejected, ev.Action)
		},
		OnFlagChange: func(_ context.Context, ev *domain.FlagEvent) {
			flags = append(flags, ev.Flag)
		},
	}

	e := newEngine(t,
		runtime.Config{Descriptors: []domain.FieldDescriptor{
			{Key: "email", Value: domain.String(""), InitialValueIsOk: domain.Flag(true)},
		}},
		runtime.WithName("signup"),
		runtime.WithLifecycleHooks(hooks),
		runtime.WithClock(func() time.Time { return fixed }),
		runtime.WithLogger(nil),
	)
	assert.Equal(t, "signup", e.Name())
	assert.Equal(t, []domain.ActionType{domain.ActionSetSaveable}, transitions, "construction recompute")
	assert.Equal(t, []domain.FlagName{domain.FlagSaveable}, flags)

	require.NoError(t, e.ChangeValue(ctx, "email", domain.String("a@b.com")))
	assert.Equal(t, []domain.ActionType{
		domain.ActionSetSaveable,
		domain.ActionChangeValue,
		domain.ActionSetDirty,
	}, transitions)

	assert.Error(t, e.ChangeValue(ctx, "ghost", domain.Null()))
	assert.Equal(t, []domain.ActionType{domain.ActionChangeValue}, rejected)
	assert.Len(t, transitions, 3, "a rejected no-op is not a transition")
}

func TestEngine_ListenerMayReenter(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, runtime.Config{Descriptors: []domain.FieldDescriptor{
		{Key: "name", Value: domain.String("")},
	}})

	var seen []bool
	e.Subscribe(func(ctx context.Context, ev *domain.FlagEvent) {
		if ev.Flag == domain.FlagDirty {
			seen = append(seen, e.IsDirty())
		}
	})

	require.NoError(t, e.ChangeValue(ctx, "name", domain.String("x")))
	assert.Equal(t, []bool{true}, seen)
}

func TestEngine_FromState(t *testing.T) {
	ctx := context.Background()
	stored := domain.FormState{
		Data: map[string]domain.FieldState{
			"name": {Value: domain.String("Ada"), InitialValue: domain.String("")},
		},
		// Stale flags are corrected on load.
		IsDirty:    false,
		IsSaveable: false,
	}

	e := runtime.NewEngineFromState(stored, nil, nil)
	assert.True(t, e.IsDirty())
	assert.True(t, e.IsSaveable())
	assert.Equal(t, []string{"name"}, e.DirtyFieldsToCheck())

	require.NoError(t, e.Reset(ctx))
	assert.Equal(t, domain.String("Ada"), stored.Data["name"].Value, "input snapshot is not modified")

	restricted := runtime.NewEngineFromState(stored, []string{}, []string{"ghost"})
	assert.False(t, restricted.IsDirty())
	assert.True(t, restricted.IsSaveable())
}

func TestEngine_StateIsACopy(t *testing.T) {
	e := newEngine(t, runtime.Config{Descriptors: contactFields()})

	state := e.State()
	state.Data["name"] = domain.FieldState{Value: domain.String("mutated")}
	state.Data["extra"] = domain.FieldState{}

	assert.Equal(t, domain.String(""), e.Values()["name"])
	assert.False(t, e.State().Has("extra"))
}

func TestEngine_ConcurrentDispatch(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, runtime.Config{Descriptors: []domain.FieldDescriptor{
		{Key: "counter", Value: domain.Number(0)},
	}})

	var mu sync.Mutex
	notifications := 0
	e.Subscribe(func(context.Context, *domain.FlagEvent) {
		mu.Lock()
		notifications++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			assert.NoError(t, e.ChangeValue(ctx, "counter", domain.Number(float64(n))))
			_ = e.State()
		}(i)
	}
	wg.Wait()

	assert.True(t, e.IsDirty())
	assert.True(t, e.IsSaveable())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, notifications, "flags flip once regardless of interleaving")
}

func TestEngine_NotificationsFollowDispatchOrder(t *testing.T) {
	ctx := context.Background()

	held := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	var mu sync.Mutex
	var dirty []bool

	hooks := domain.LifecycleHooks{
		OnTransition: func(_ context.Context, ev *domain.TransitionEvent) {
			if ev.Action != domain.ActionChangeValue {
				return
			}
			once.Do(func() {
				close(held)
				<-release
			})
		},
	}
	e := newEngine(t, runtime.Config{Descriptors: []domain.FieldDescriptor{
		{Key: "name", Value: domain.String("")},
	}}, runtime.WithLifecycleHooks(hooks))
	e.Subscribe(func(_ context.Context, ev *domain.FlagEvent) {
		if ev.Flag == domain.FlagDirty {
			mu.Lock()
			dirty = append(dirty, ev.Value)
			mu.Unlock()
		}
	})

	first := make(chan error, 1)
	go func() { first <- e.ChangeValue(ctx, "name", domain.String("Ada")) }()
	<-held

	// Applied while the first dispatch is still notifying.
	require.NoError(t, e.ChangeValue(ctx, "name", domain.String("")))
	assert.False(t, e.IsDirty())

	close(release)
	require.NoError(t, <-first)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []bool{true, false}, dirty)
	assert.Equal(t, e.IsDirty(), dirty[len(dirty)-1], "last notification matches the stored flag")
}

func TestEngine_HookMayDispatch(t *testing.T) {
	ctx := context.Background()

	var e *runtime.Engine
	var actions []domain.ActionType
	hooks := domain.LifecycleHooks{
		OnFlagChange: func(ctx context.Context, ev *domain.FlagEvent) {
			if ev.Flag == domain.FlagDirty && ev.Value {
				require.NoError(t, e.Reset(ctx))
			}
		},
		OnTransition: func(_ context.Context, ev *domain.TransitionEvent) {
			actions = append(actions, ev.Action)
		},
	}
	e = newEngine(t, runtime.Config{Descriptors: []domain.FieldDescriptor{
		{Key: "name", Value: domain.String("")},
	}}, runtime.WithLifecycleHooks(hooks))

	require.NoError(t, e.ChangeValue(ctx, "name", domain.String("x")))
	assert.False(t, e.IsDirty())
	assert.Equal(t, []domain.ActionType{
		domain.ActionChangeValue,
		domain.ActionSetDirty,
		domain.ActionSetSaveable,
		domain.ActionReset,
		domain.ActionSetDirty,
		domain.ActionSetSaveable,
	}, actions)
}
