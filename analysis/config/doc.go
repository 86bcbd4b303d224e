// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package config provides a simple way to manage configuration files.

Use [Load](filename) to load a configuration from a specific filename, or [LoadBytes] to load a configuration from
its content.

Use [SetGlobalConfig](filename) to set filename as the global config, and then [LoadGlobal]() to load the global config.

A config file should be in yaml format. The top-level fields can be any of the fields defined in the Config
struct type. The other fields are defined by the types of the fields of [Config] and nested struct types.
For example, a valid config file is as follows:

	options:
	  log-level: 4
	  num-routines: 8

	leak-problems:
	  - rule-id: OS_OPEN_STREAM
	    tracked:
	      - java.io.InputStream
	      - java.io.OutputStream
	    excluded:
	      - java.io.ByteArrayInputStream
	      - java.io.ByteArrayOutputStream
	    close-methods:
	      - method: close
	        descriptor: ()V
	    close-on-declared-type: true

	filters:
	  - class: com\.example\.generated\..*

	hierarchy:
	  com.example.LogStream: [java.io.OutputStream]

When no leak problem is specified, the built-in stream policy is used. It only accepts close()V invoked with
invokevirtual on the allocated class; set the option stream-close-on-supertypes to accept any owner.

# Identifying code elements

The config uses [CodeIdentifier] to identify methods. For example, close methods and filters are CodeIdentifiers
which identify methods by class, name and descriptor. An important feature of the code identifiers is that the string
specifications are seen as regexes if they can be compiled to regexes, otherwise they are strings.
*/
package config
