/*
 * Copyright 2025 sookrat.
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
 */

package models

import "github.com/sookrat/studyapi/internal/database"

// Referenced tables carry lower priorities so migrations create them first.
func init() {
	database.RegisterModel(database.NewModelAdapter((*Student)(nil), 10))
	database.RegisterModel(database.NewModelAdapter((*User)(nil), 10))
	database.RegisterModel(database.NewModelAdapter((*Item)(nil), 20,
		`("student_id") REFERENCES "students" ("id") ON DELETE CASCADE`))
	database.RegisterModel(database.NewModelAdapter((*QandA)(nil), 20,
		`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`))
}
