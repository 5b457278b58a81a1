/**
  Copyright 2024-present Marek Novotny. All rights reserved.
*/

package weld

import (
	"reflect"
)

func GetService[S any](manager *Manager) (ret S, ok bool) {
	s, ok := manager.Services().Get(reflect.TypeOf((*S)(nil)).Elem())
	if !ok {
		return
	}
	ret, ok = s.(S)
	return
}

func GetBean[T any](manager *Manager, typ reflect.Type, qualifiers ...*Annotation) (ret T, ok bool) {
	list := manager.ResolveBeans(typ, qualifiers...)
	if len(list) != 1 {
		ok = false
		return
	}
	instance, err := manager.GetReference(list[0], nil)
	if err != nil {
		ok = false
		return
	}
	ret, ok = instance.(T)
	return
}
