/*
 *
 * Copyright 2024-present Marek Novotny.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package weld

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

/**
Manager is one container instance. Bean registration and metadata
resolution run in the single-threaded boot phase; Deploy seals the
manager and reports every definition problem collected so far. After a
successful Deploy the definitions are immutable and the manager serves
concurrent instantiation requests without locking them.

Multiple isolated managers can live in one process, each with its own
uuid identity partitioning the shared member-transformation cache.
*/
type Manager struct {
	id     string
	logger *zap.Logger

	services *ServiceRegistry
	registry *registry

	disposalMu      sync.RWMutex
	disposalMethods []*DisposalMethod

	/**
	Definition problems aggregated across the deployment
	*/
	problemsMu sync.Mutex
	problems   error

	deployed bool

	/**
	Instances of normal-scoped beans, created on first reference
	*/
	instances sync.Map
}

type ManagerOption func(*Manager)

func WithLogger(logger *zap.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

func WithID(id string) ManagerOption {
	return func(m *Manager) { m.id = id }
}

func NewManager(opts ...ManagerOption) *Manager {
	t := &Manager{
		id:       uuid.NewString(),
		logger:   zap.NewNop(),
		services: &ServiceRegistry{},
		registry: newRegistry(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.services.Register(NewMemberTransformer())
	t.services.Register(newInjectionTargetService(t))
	return t
}

func (t *Manager) ID() string {
	return t.id
}

func (t *Manager) Services() *ServiceRegistry {
	return t.services
}

/**
AddClass runs the whole definition pipeline for one annotated type: the
managed bean itself, its disposal methods, then the producer beans of
its producer members. Definition errors are recorded as deployment
problems and returned to the caller; nothing is registered for a type
whose class bean is invalid.
*/
func (t *Manager) AddClass(typ *AnnotatedType) (Bean, error) {
	b, err := NewClassBean(t, typ)
	if err != nil {
		t.ReportProblem(err)
		return nil, err
	}
	t.AddBean(b)

	for _, method := range typ.MethodsWithAnnotatedParameter(Disposes) {
		dm, err := NewDisposalMethod(t, b, method)
		if err != nil {
			t.ReportProblem(err)
			continue
		}
		t.RegisterDisposalMethod(dm)
	}

	for _, method := range typ.AnnotatedMethods(Produces) {
		pb, err := NewProducerMethodBean(t, b, method)
		if err != nil {
			t.ReportProblem(err)
			continue
		}
		t.AddBean(pb)
	}

	for _, field := range typ.Fields() {
		if !field.IsAnnotationPresent(Produces) {
			continue
		}
		pb, err := NewProducerFieldBean(t, b, field)
		if err != nil {
			t.ReportProblem(err)
			continue
		}
		t.AddBean(pb)
	}

	return b, nil
}

func (t *Manager) AddBean(b Bean) {
	t.registry.add(b)
	t.logger.Debug("bean registered", zap.String("bean", b.String()))
}

func (t *Manager) Beans() []Bean {
	return t.registry.all()
}

func (t *Manager) Lookup(name string) []Bean {
	return t.registry.findByName(name)
}

func (t *Manager) ReportProblem(err error) {
	if err == nil {
		return
	}
	t.problemsMu.Lock()
	defer t.problemsMu.Unlock()
	t.problems = multierr.Append(t.problems, err)
}

/**
Deploy validates the injection points of every registered bean and then
refuses startup if any definition problem accumulated, reporting all of
them at once instead of failing on the first. Producer beans built over
the unvalidated producer path are covered by exactly this pass, which
is why skipping their per-producer validation loses nothing.
*/
func (t *Manager) Deploy() error {
	its, err := t.injectionTargetService()
	if err != nil {
		return err
	}
	for _, b := range t.registry.all() {
		for _, ip := range b.InjectionPoints() {
			if err := its.ValidateInjectionPoint(ip); err != nil {
				t.ReportProblem(err)
			}
		}
	}

	t.problemsMu.Lock()
	problems := t.problems
	t.problemsMu.Unlock()
	if problems != nil {
		return errors.Wrapf(problems, "deployment refused with %d problem(s)", len(multierr.Errors(problems)))
	}
	t.deployed = true
	t.logger.Debug("deployment complete", zap.Int("beans", len(t.registry.all())))
	return nil
}

/**
Candidate beans assignable to the required type carrying every required
binding.
*/
func (t *Manager) resolveBeans(typ reflect.Type, qualifiers AnnotationSet) []Bean {

	// a non-interface type matches by identity only, the type index
	// already holds the exact candidate set
	pool := t.registry.findByType(typ)
	if typ.Kind() == reflect.Interface {
		pool = t.registry.all()
	}

	var candidates []Bean
	for _, b := range pool {
		if !typeMatches(b.Type(), typ) {
			continue
		}
		if !b.Qualifiers().ContainsAll(qualifiers) {
			continue
		}
		candidates = append(candidates, b)
	}
	return candidates
}

func (t *Manager) ResolveBeans(typ reflect.Type, qualifiers ...*Annotation) []Bean {
	return t.resolveBeans(typ, defaultBindings(qualifiers))
}

func typeMatches(beanType, requiredType reflect.Type) bool {
	if beanType == requiredType {
		return true
	}
	if requiredType.Kind() == reflect.Interface {
		return beanType.Implements(requiredType)
	}
	return false
}

/**
GetReference returns a contextual instance of the bean. Dependent
objects are created fresh per reference; normal-scoped instances are
created once and shared. Racing first references of a normal-scoped
bean may duplicate the creation, the first stored instance wins.
*/
func (t *Manager) GetReference(bean Bean, cc *CreationalContext) (interface{}, error) {
	if cc == nil {
		cc = t.NewCreationalContext()
	}
	if !bean.Scope().Normal() {
		return bean.Create(cc)
	}
	if cached, ok := t.instances.Load(bean); ok {
		return cached, nil
	}
	instance, err := bean.Create(cc)
	if err != nil {
		return nil, err
	}
	actual, _ := t.instances.LoadOrStore(bean, instance)
	return actual, nil
}

/**
InjectableReference resolves the single candidate bean of an injection
point and returns its contextual instance. Zero or several candidates
are definition errors named after the injection point.
*/
func (t *Manager) InjectableReference(ip *InjectionPoint, cc *CreationalContext) (interface{}, error) {
	candidates := t.resolveBeans(ip.Type(), ip.Qualifiers())
	switch len(candidates) {
	case 0:
		return nil, definitionErrorf("unsatisfied dependency at %s", ip)
	case 1:
		return t.GetReference(candidates[0], cc)
	default:
		return nil, definitionErrorf("ambiguous dependency at %s, %d candidates", ip, len(candidates))
	}
}

func (t *Manager) RegisterDisposalMethod(dm *DisposalMethod) {
	t.disposalMu.Lock()
	defer t.disposalMu.Unlock()
	t.disposalMethods = append(t.disposalMethods, dm)
	t.logger.Debug("disposal method registered", zap.String("method", dm.String()))
}

/**
ResolveDisposalMethods finds the disposal methods matching a product
type and binding set exactly.
*/
func (t *Manager) ResolveDisposalMethods(typ reflect.Type, qualifiers ...*Annotation) []*DisposalMethod {
	t.disposalMu.RLock()
	defer t.disposalMu.RUnlock()
	required := defaultBindings(qualifiers)
	var out []*DisposalMethod
	for _, dm := range t.disposalMethods {
		if dm.Matches(typ, required) {
			out = append(out, dm)
		}
	}
	return out
}

func (t *Manager) String() string {
	return fmt.Sprintf("manager [id=%s, beans=%d, deployed=%v]", t.id, len(t.registry.all()), t.deployed)
}

/**
ServiceRegistry is the generic service locator of a manager, keyed by
the concrete service type. Capabilities like member transformation and
injection-target validation are looked up here, never hard-wired.
*/
type ServiceRegistry struct {
	services sync.Map
}

func (t *ServiceRegistry) Register(service interface{}) {
	t.services.Store(reflect.TypeOf(service), service)
}

func (t *ServiceRegistry) Get(typ reflect.Type) (interface{}, bool) {
	return t.services.Load(typ)
}

func (t *Manager) memberTransformer() (*MemberTransformer, error) {
	if s, ok := GetService[*MemberTransformer](t); ok {
		return s, nil
	}
	return nil, errors.Errorf("member transformer service not installed in %s", t)
}

func (t *Manager) injectionTargetService() (*InjectionTargetService, error) {
	if s, ok := GetService[*InjectionTargetService](t); ok {
		return s, nil
	}
	return nil, errors.Errorf("injection target service not installed in %s", t)
}
