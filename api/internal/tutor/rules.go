package tutor

import "strings"

// rule is one (predicate, reply) pair of the fallback cascade.
type rule struct {
	name  string
	match func(input) bool
	reply func(input) string
}

func fixed(s string) func(input) string {
	return func(input) string { return s }
}

// topic fires when any keyword appears in the message or in the scanned context.
func topic(name, reply string, keywords ...string) rule {
	return rule{
		name: name,
		match: func(in input) bool {
			for _, k := range keywords {
				if strings.Contains(in.message, k) || strings.Contains(in.context, k) {
					return true
				}
			}
			return false
		},
		reply: fixed(reply),
	}
}

// intent fires on phrases in the message only.
func intent(name string, reply func(input) string, phrases ...string) rule {
	return rule{
		name: name,
		match: func(in input) bool {
			for _, p := range phrases {
				if strings.Contains(in.message, p) {
					return true
				}
			}
			return false
		},
		reply: reply,
	}
}

// courtesy fires when the message contains one of the words, or a word starting with one of the prefixes.
func courtesy(name, reply string, words, prefixes []string) rule {
	return rule{
		name: name,
		match: func(in input) bool {
			for _, w := range in.words {
				for _, x := range words {
					if w == x {
						return true
					}
				}
				for _, p := range prefixes {
					if strings.HasPrefix(w, p) {
						return true
					}
				}
			}
			return false
		},
		reply: fixed(reply),
	}
}

// Order matters: topics, then intents, then courtesy. Quadratic is checked before the water cycle.
func defaultRules() []rule {
	return []rule{
		topic("photosynthesis",
			"Photosynthesis is how plants make their food using sunlight! 🌱☀️ Plants take in carbon dioxide and water, "+
				"and with sunlight, they create glucose (sugar) and release oxygen. It's like cooking food but with sunlight instead of fire!",
			"photosynthesis"),
		topic("newton",
			"Newton's laws explain how objects move! First law: Things don't move unless pushed. Second law: Force = mass × acceleration. "+
				"Third law: Every action has an equal reaction. Like when you push a wall, it pushes back!",
			"newton"),
		topic("quadratic",
			"Quadratic equations look like: ax² + bx + c = 0. To solve them, use the formula: x = [-b ± √(b² - 4ac)] ÷ 2a. "+
				"It helps find where a parabola crosses the x-axis!",
			"quadratic"),
		topic("water cycle",
			"The water cycle is nature's recycling system! 💧 Water evaporates from oceans, forms clouds, rains down, "+
				"and flows back to oceans. It's like a never-ending journey of water!",
			"water cycle"),
		topic("gravity",
			"Gravity is the force that pulls objects towards each other! 🌍 The Earth pulls everything towards its centre, "+
				"which is why a ball falls down when you drop it. On Earth it gives every object an acceleration of about 9.8 m/s².",
			"gravity", "gravitation"),
		topic("algebra",
			"Algebra uses letters like x and y to stand for unknown numbers. 🔢 You solve by doing the same thing to both sides "+
				"of the equation until x is alone. For example, x + 3 = 7 becomes x = 7 - 3, so x = 4!",
			"algebra"),
		topic("pythagoras",
			"Pythagoras' theorem says that in a right-angled triangle, a² + b² = c², where c is the longest side (hypotenuse). "+
				"So a triangle with sides 3 and 4 has a hypotenuse of 5!",
			"pythagoras", "hypotenuse"),
		topic("french revolution",
			"The French Revolution (1789) was when the people of France rose against the king and the unfair tax system. 🇫🇷 "+
				"Its big ideas were liberty, equality and fraternity, and it ended absolute monarchy in France.",
			"french revolution"),
		topic("mughal",
			"The Mughal Empire ruled large parts of India from 1526, when Babur won the First Battle of Panipat. "+
				"Akbar, Shah Jahan and Aurangzeb were famous emperors, and the Taj Mahal is one of their best-known monuments!",
			"mughal"),
		topic("latitude",
			"Latitudes are imaginary lines running east to west around the Earth. 🌐 The Equator is 0°, and the lines go up to 90° "+
				"at the North and South Poles. Longitudes run from pole to pole and help us find exact places on a map!",
			"equator", "latitude", "longitude"),
		topic("volcano",
			"A volcano is an opening in the Earth's crust where hot molten rock called magma comes out. 🌋 "+
				"Once it reaches the surface it is called lava. Pressure from gases pushes it up, causing an eruption!",
			"volcano"),

		intent("explain", explainReply, "what is", "explain"),
		intent("steps", stepsReply, "how to", "steps"),
		intent("example", exampleReply, "example"),

		courtesy("greeting",
			"Hello beta! 👋 I'm your study buddy. Scan a textbook page or ask me anything, and we'll learn it together!",
			[]string{"hello", "hi", "hey"}, nil),
		courtesy("thanks",
			"You're most welcome! 😊 Keep asking questions, that's how we learn. Anything else you want to understand?",
			nil, []string{"thank"}),
		intent("who are you",
			fixed("I'm your AI tutor! 📚 I can explain your textbook pages, help you prepare for exams, practise questions with you, "+
				"and even help with coding. Just pick a mode and ask away!"),
			"who are you"),
	}
}

func explainReply(in input) string {
	if !in.hasContext() {
		return "Let me explain it simply: this concept is about understanding how things work in a systematic way. " +
			"Start with the basic idea, then see how each part connects to the next. Would you like me to go deeper into any specific part?"
	}
	return `Based on your scanned text about "` + in.snippet(50) + `...", this concept is important because it builds the base for what comes next. ` +
		"Let me explain it simply: It's about understanding how things work in a systematic way. Would you like me to go deeper into any specific part?"
}

func stepsReply(in input) string {
	const steps = "1) Understand the basic concept 2) Identify the key elements 3) Apply the formula/method 4) Practice with examples. " +
		"Want me to break down each step?"
	if !in.hasContext() {
		return "Here are the steps: " + steps
	}
	return `For "` + in.snippet(30) + `...", here are the steps: ` + steps
}

func exampleReply(in input) string {
	if !in.hasContext() {
		return "Let me give you a real-life example. Imagine you're explaining this to a friend using things you see every day at home. " +
			"Tell me which topic you're studying and I'll make the example more specific!"
	}
	return `Let me give you a real-life example for "` + in.snippet(40) + `..." Imagine you're in this situation at home or in class, ` +
		"and think about how the idea shows up there. Does this help you understand better?"
}
