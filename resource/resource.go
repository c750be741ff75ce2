// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package resource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apierrors "github.com/rivaas-dev/basic-auth-service/errors"
	"github.com/rivaas-dev/basic-auth-service/middleware/contenttype"
	"github.com/rivaas-dev/basic-auth-service/router"
)

const tracerName = "github.com/rivaas-dev/basic-auth-service/resource"

var (
	// ErrNotImplemented is returned by [New] when an allowed method maps to
	// an operation the delegate does not implement.
	ErrNotImplemented = errors.New("operation not implemented by delegate")

	// ErrInvalidName is returned by [New] for an empty name or one
	// containing a slash.
	ErrInvalidName = errors.New("invalid resource name")
)

// Option defines functional options for resource configuration.
type Option func(*config)

type config struct {
	collectionMethods []string
	instanceMethods   []string
	formatter         apierrors.Formatter
	maxBodyBytes      int64
	tracerProvider    trace.TracerProvider

	contract bool
	profile  string
	version  string
}

func defaultConfig() *config {
	return &config{
		formatter:    apierrors.NewSimple(),
		maxBodyBytes: DefaultMaxBodyBytes,
	}
}

// WithCollectionMethods declares the methods accepted on the collection.
// Methods missing from the collection table (GET, POST) are ignored.
// Default: all of the table.
func WithCollectionMethods(methods ...string) Option {
	return func(cfg *config) {
		cfg.collectionMethods = methods
	}
}

// WithInstanceMethods declares the methods accepted on instances.
// Methods missing from the instance table (GET, PUT, DELETE) are ignored.
// Default: all of the table.
func WithInstanceMethods(methods ...string) Option {
	return func(cfg *config) {
		cfg.instanceMethods = methods
	}
}

// WithFormatter sets the error formatter. Default: [apierrors.Simple].
func WithFormatter(f apierrors.Formatter) Option {
	return func(cfg *config) {
		if f != nil {
			cfg.formatter = f
		}
	}
}

// WithContentType guards both routes with the media type contract of
// [contenttype.New]. Empty profile or version place no constraint.
func WithContentType(profile, version string) Option {
	return func(cfg *config) {
		cfg.contract = true
		cfg.profile = profile
		cfg.version = version
	}
}

// WithMaxBodyBytes limits the size of request bodies.
// Default: [DefaultMaxBodyBytes].
func WithMaxBodyBytes(n int64) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.maxBodyBytes = n
		}
	}
}

// WithTracerProvider sets the tracer provider for delegate spans.
// Default: the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *config) {
		cfg.tracerProvider = tp
	}
}

// Resource dispatches collection and instance requests to a delegate.
// It is immutable after [New] and safe for concurrent use.
type Resource struct {
	name     string
	delegate any

	collectionAllowed []string
	instanceAllowed   []string

	formatter    apierrors.Formatter
	guard        router.HandlerFunc
	maxBodyBytes int64
	tracer       trace.Tracer
}

// New creates a resource named name backed by delegate.
//
// The allowed methods of each route are the declared methods intersected
// with the static table. New returns an error wrapping [ErrNotImplemented]
// when the delegate lacks the operation of an allowed method.
func New(name string, delegate any, opts ...Option) (*Resource, error) {
	if name == "" || strings.Contains(name, "/") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if delegate == nil {
		return nil, fmt.Errorf("resource %s: nil delegate", name)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	collection, err := allowedMethods(name, "collection", delegate, collectionMethods, cfg.collectionMethods)
	if err != nil {
		return nil, err
	}
	instance, err := allowedMethods(name, "instance", delegate, instanceMethods, cfg.instanceMethods)
	if err != nil {
		return nil, err
	}

	tp := cfg.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	res := &Resource{
		name:              name,
		delegate:          delegate,
		collectionAllowed: collection,
		instanceAllowed:   instance,
		formatter:         cfg.formatter,
		maxBodyBytes:      cfg.maxBodyBytes,
		tracer:            tp.Tracer(tracerName),
	}
	if cfg.contract {
		res.guard = contenttype.New(
			contenttype.WithProfile(cfg.profile),
			contenttype.WithVersion(cfg.version),
			contenttype.WithFormatter(cfg.formatter),
		)
	}

	return res, nil
}

func allowedMethods(name, shape string, delegate any, table map[string]Operation, declared []string) ([]string, error) {
	if declared == nil {
		declared = make([]string, 0, len(table))
		for m := range table {
			declared = append(declared, m)
		}
	}

	allowed := make([]string, 0, len(table))
	for _, m := range declared {
		op, ok := table[m]
		if !ok || slices.Contains(allowed, m) {
			continue
		}
		if iface, ok := implements(delegate, op); !ok {
			return nil, fmt.Errorf("resource %s: %s method %s needs %s (%s): %w",
				name, shape, m, op, iface, ErrNotImplemented)
		}
		allowed = append(allowed, m)
	}
	slices.Sort(allowed)

	return allowed, nil
}

// Name returns the resource name.
func (res *Resource) Name() string {
	return res.name
}

// CollectionRoute is the name of the collection route.
func (res *Resource) CollectionRoute() string {
	return res.name + ".collection"
}

// InstanceRoute is the name of the instance route, used to build Location
// headers.
func (res *Resource) InstanceRoute() string {
	return res.name + ".instance"
}

// AllowedCollectionMethods returns the sorted methods accepted on the collection.
func (res *Resource) AllowedCollectionMethods() []string {
	return slices.Clone(res.collectionAllowed)
}

// AllowedInstanceMethods returns the sorted methods accepted on instances.
func (res *Resource) AllowedInstanceMethods() []string {
	return slices.Clone(res.instanceAllowed)
}

// Register adds the collection route /{name} and the instance route
// /{name}/{id} to r. Both match any method.
func (res *Resource) Register(r router.Registrar) {
	r.Handle("/"+res.name, res.chain(res.Collection)...).Name(res.CollectionRoute())
	r.Handle("/"+res.name+"/{id}", res.chain(res.Instance)...).Name(res.InstanceRoute())
}

func (res *Resource) chain(h router.HandlerFunc) []router.HandlerFunc {
	if res.guard == nil {
		return []router.HandlerFunc{h}
	}
	return []router.HandlerFunc{res.guard, h}
}

// Collection handles requests to /{name}.
func (res *Resource) Collection(c *router.Context) {
	payload, err := validate(c.Request, res.collectionAllowed, res.maxBodyBytes)
	if err != nil {
		res.fail(c, err)
		return
	}

	switch op := collectionMethods[c.Request.Method]; op {
	case OpGetAll:
		filter, err := ParseDateFilter(c.Request.URL.Query())
		if err != nil {
			res.fail(c, err)
			return
		}
		content, err := res.call(c, op, "", func(ctx context.Context) (any, error) {
			return res.delegate.(Lister).GetAll(ctx, filter)
		})
		res.respond(c, http.StatusOK, content, err)

	case OpCreate:
		var id string
		content, err := res.call(c, op, "", func(ctx context.Context) (any, error) {
			var content any
			var err error
			id, content, err = res.delegate.(Creator).Create(ctx, payload)
			return content, err
		})
		if err == nil {
			var location string
			location, err = c.URLFor(res.InstanceRoute(), map[string]string{"id": id})
			if err != nil {
				err = fmt.Errorf("building location for %s %q: %w", res.name, id, err)
			} else {
				c.Header("Location", location)
			}
		}
		res.respond(c, http.StatusCreated, content, err)
	}
}

// Instance handles requests to /{name}/{id}.
func (res *Resource) Instance(c *router.Context) {
	payload, err := validate(c.Request, res.instanceAllowed, res.maxBodyBytes)
	if err != nil {
		res.fail(c, err)
		return
	}

	id := c.Param("id")
	op := instanceMethods[c.Request.Method]
	content, err := res.call(c, op, id, func(ctx context.Context) (any, error) {
		switch op {
		case OpGet:
			return res.delegate.(Getter).Get(ctx, id, payload)
		case OpUpdate:
			return res.delegate.(Updater).Update(ctx, id, payload)
		default:
			return res.delegate.(Deleter).Delete(ctx, id, payload)
		}
	})
	res.respond(c, http.StatusOK, content, err)
}

// call runs a delegate operation inside a span.
func (res *Resource) call(c *router.Context, op Operation, id string, fn func(context.Context) (any, error)) (any, error) {
	attrs := []attribute.KeyValue{
		attribute.String("resource.name", res.name),
		attribute.String("resource.operation", op.String()),
	}
	if id != "" {
		attrs = append(attrs, attribute.String("resource.id", id))
	}

	ctx, span := res.tracer.Start(c.Request.Context(), "resource."+op.String(),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	content, err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return content, err
}

func (res *Resource) respond(c *router.Context, status int, content any, err error) {
	if res.clientGone(c) {
		return
	}
	if err != nil {
		res.fail(c, err)
		return
	}
	if err := c.JSON(status, content); err != nil {
		res.fail(c, err)
	}
}

// fail writes err through the error mapper. Errors mapping to 500 are logged
// since their text never reaches the client.
func (res *Resource) fail(c *router.Context, err error) {
	if res.clientGone(c) {
		return
	}

	apiErr := apierrors.ToAPIError(err)
	if apiErr.Kind == apierrors.KindInternal {
		c.Logger().ErrorContext(c.Request.Context(), "resource operation failed",
			"resource", res.name,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
	}
	if werr := apierrors.Write(c.Response, c.Request, res.formatter, apiErr); werr != nil {
		c.Logger().DebugContext(c.Request.Context(), "writing error response failed", "error", werr)
	}
}

func (res *Resource) clientGone(c *router.Context) bool {
	err := c.Request.Context().Err()
	if err == nil {
		return false
	}
	c.Logger().Debug("client went away, dropping response",
		"resource", res.name,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"reason", err,
	)
	return true
}
