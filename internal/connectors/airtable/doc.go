// Package airtable connects pollbridge to the Airtable Web API: record
// polling triggers, selector dictionaries (bases, tables, fields,
// records, comments) and the OAuth endpoints for the credential
// lifecycle. All remote access goes through the RemoteCaller port.
package airtable
