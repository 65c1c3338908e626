/*
 * Copyright 2021-2022 by Nedim Sabic Sabic
 * https://www.fibratus.io
 * All Rights Reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

var schema = `
{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"properties": {
		"config-file":		{"type": "string"},
		"debug-privilege":	{"type": "boolean"},
		"logging": {
			"type": "object",
			"properties": {
				"level": 			{"type": "string", "enum": ["panic", "fatal", "error", "warn", "warning", "info", "debug", "trace"]},
				"max-age": 			{"type": "integer", "minimum": 0},
				"max-backups": 		{"type": "integer", "minimum": 0},
				"max-size": 		{"type": "integer", "minimum": 1},
				"formatter": 		{"type": "string", "enum": ["json", "text"]},
				"path": 			{"type": "string"},
				"log-stdout": 		{"type": "boolean"}
			},
			"additionalProperties": false
		},
		"output": {
			"type": "object",
			"properties": {
				"format": 			{"type": "string", "enum": ["table", "json", "yaml", "template"]},
				"template": 		{"type": "string"},
				"humanize": 		{"type": "boolean"}
			},
			"if": {
				"properties": {"format": { "const": "template" }}
			},
			"then": {
				"required": ["template"],
				"properties": {
					"template": {"type": "string", "minLength": 1}
				}
			},
			"additionalProperties": false
		},
		"heap": {
			"type": "object",
			"properties": {
				"max-blocks": 		{"type": "integer", "minimum": 0},
				"spinner": 			{"type": "boolean"}
			},
			"additionalProperties": false
		}
	},
	"additionalProperties": false
}
`
