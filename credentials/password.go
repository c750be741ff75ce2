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

package credentials

import (
	"crypto/rand"
	"fmt"
)

// passwordAlphabet has 64 symbols so a random byte maps onto it without bias.
const passwordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// DefaultPasswordLength is the length of generated passwords.
const DefaultPasswordLength = 24

// GeneratePassword returns a random URL-safe password of n characters.
func GeneratePassword(n int) (string, error) {
	if n <= 0 {
		n = DefaultPasswordLength
	}

	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}
	for i, b := range buf {
		buf[i] = passwordAlphabet[b&63]
	}
	return string(buf), nil
}
