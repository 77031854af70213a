package alerter

import (
	"errors"
	"net/http"
	"reflect"
	"runtime"
	"strings"
)

// KindPanic is the kind of a panic whose value is not an error.
const KindPanic = "panic"

// Kinder lets an error pick its own kind name instead of its Go type name.
type Kinder interface {
	AlertKind() string
}

// KindOf returns the kind of err itself, without looking at wrapped errors:
// its AlertKind() if it has one, otherwise its type name with pointer and
// package stripped (*fs.PathError -> PathError).
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	if k, ok := err.(Kinder); ok {
		if name := strings.TrimSpace(k.AlertKind()); name != "" {
			return name
		}
	}
	return typeName(reflect.TypeOf(err))
}

// Kinds lists the kinds of every error in err's chain, outermost first,
// without duplicates. Joined errors are walked depth-first.
func Kinds(err error) []string {
	var out []string
	seen := map[string]struct{}{}
	var walk func(error)
	walk = func(e error) {
		for e != nil {
			if k := KindOf(e); k != "" {
				if _, dup := seen[k]; !dup {
					seen[k] = struct{}{}
					out = append(out, k)
				}
			}
			switch x := e.(type) {
			case interface{ Unwrap() []error }:
				for _, inner := range x.Unwrap() {
					walk(inner)
				}
				return
			case interface{ Unwrap() error }:
				e = x.Unwrap()
			default:
				return
			}
		}
	}
	walk(err)
	return out
}

// primaryKind is the kind shown in the alert headline: the first tagged kind
// in the chain, else the outermost type name.
func primaryKind(err error) string {
	var k Kinder
	if errors.As(err, &k) {
		if name := strings.TrimSpace(k.AlertKind()); name != "" {
			return name
		}
	}
	return KindOf(err)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

// Identity names a function the way alerts report it.
type Identity struct {
	Name   string // e.g. "syncInventory", "(*Store).Flush"
	Module string // import path of the declaring package
}

func (id Identity) String() string {
	if id.Module == "" {
		return id.Name
	}
	return id.Module + "." + id.Name
}

// Identify resolves the declaring package and name of a function value from
// the runtime symbol table. Non-function values yield their type's identity.
func Identify(fn any) Identity {
	v := reflect.ValueOf(fn)
	if !v.IsValid() {
		return Identity{}
	}
	if v.Kind() != reflect.Func {
		t := v.Type()
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		return Identity{Name: typeName(t), Module: t.PkgPath()}
	}
	if v.IsNil() {
		return Identity{}
	}
	rf := runtime.FuncForPC(v.Pointer())
	if rf == nil {
		return Identity{Name: v.Type().String()}
	}
	return splitFuncName(rf.Name())
}

// identifyHandler looks through http.HandlerFunc to the function it adapts.
func identifyHandler(h http.Handler) Identity {
	if hf, ok := h.(http.HandlerFunc); ok {
		return Identify((func(http.ResponseWriter, *http.Request))(hf))
	}
	return Identify(h)
}

// ParseIdentity splits a runtime symbol name such as the one reported by
// runtime.Func.Name or gin's Context.HandlerName.
func ParseIdentity(symbol string) Identity { return splitFuncName(symbol) }

// splitFuncName splits "example.com/x/pkg.(*T).Method-fm" into its package
// path and the symbol inside it.
func splitFuncName(full string) Identity {
	full = strings.TrimSuffix(full, "-fm")
	slash := strings.LastIndex(full, "/")
	dot := strings.Index(full[slash+1:], ".")
	if dot < 0 {
		return Identity{Name: full}
	}
	dot += slash + 1
	// The runtime escapes dots in the last path element ("yaml%2ev3").
	return Identity{Module: strings.ReplaceAll(full[:dot], "%2e", "."), Name: full[dot+1:]}
}
