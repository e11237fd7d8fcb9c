// Package model defines the domain types produced by the fixture factories.
//
// Fields carry a factory struct tag naming the attribute they receive:
//
//	type Post struct {
//	    ID     string `factory:"id"`
//	    Name   string `factory:"name"`
//	    Author *User  `factory:"author"`
//	}
//
// A string ID field marks a type as persistable; object stores fill it in
// on create.
package model
