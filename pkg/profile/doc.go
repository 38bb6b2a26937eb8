// Package profile assembles the collected entities into one document and
// renders it as a TypeScript module, JSON or YAML.
package profile
