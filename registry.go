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
	"reflect"
	"sync"
)

/**
Fast search of bean definitions by implementation type and by name.
Registrations happen during the boot phase, lookups may race with late
registrations, hence the RWMutex.
*/
type registry struct {
	sync.RWMutex
	beansByName map[string][]Bean
	beansByType map[reflect.Type][]Bean
	beans       []Bean
}

func newRegistry() *registry {
	return &registry{
		beansByName: make(map[string][]Bean),
		beansByType: make(map[reflect.Type][]Bean),
	}
}

func (t *registry) add(b Bean) {
	t.Lock()
	defer t.Unlock()
	t.beans = append(t.beans, b)
	t.beansByType[b.Type()] = append(t.beansByType[b.Type()], b)
	if name := b.Name(); name != "" {
		t.beansByName[name] = append(t.beansByName[name], b)
	}
}

func (t *registry) findByType(typ reflect.Type) []Bean {
	t.RLock()
	defer t.RUnlock()
	list := t.beansByType[typ]
	out := make([]Bean, len(list))
	copy(out, list)
	return out
}

func (t *registry) findByName(name string) []Bean {
	t.RLock()
	defer t.RUnlock()
	list := t.beansByName[name]
	out := make([]Bean, len(list))
	copy(out, list)
	return out
}

func (t *registry) all() []Bean {
	t.RLock()
	defer t.RUnlock()
	out := make([]Bean, len(t.beans))
	copy(out, t.beans)
	return out
}
